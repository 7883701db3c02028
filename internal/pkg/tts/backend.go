// Package tts synthesizes voiceover audio through an ordered fallback chain
// of speech backends.
package tts

import (
	"context"
	"fmt"
	"strings"
)

// Backend is one speech-synthesis service. Each backend declares its own
// character ceiling; the chain re-truncates the text per backend instead of
// truncating once up front.
type Backend interface {
	// Name identifies the backend in logs and results.
	Name() string

	// MaxChars is the longest input the backend accepts. Zero means
	// unlimited.
	MaxChars() int

	// Synthesize converts text to audio and returns the raw bytes plus
	// their MIME content type.
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}

// SynthesisError reports that every backend in the chain failed. It keeps
// the per-backend failures so the operator can tell a quota problem from an
// outage.
type SynthesisError struct {
	Failures map[string]error
}

func (e *SynthesisError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for name, err := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", name, err))
	}
	return "all TTS backends failed: " + strings.Join(parts, "; ")
}
