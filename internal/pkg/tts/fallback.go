package tts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"vidops/internal/pkg/id"
	"vidops/internal/pkg/storage"
	"vidops/internal/pkg/texttools"
)

// Result is a successful synthesis: the uploaded audio URL and the backend
// that produced it.
type Result struct {
	AudioURL string
	Backend  string
	Chars    int
}

// Synthesizer runs the fallback chain: backends are tried in order and the
// first success wins. Each backend gets the text re-truncated to its own
// ceiling, so a fallback with a tighter limit still receives valid input.
type Synthesizer struct {
	backends  []Backend
	sanitizer *texttools.TextSanitizer
	store     storage.Storage
}

// NewSynthesizer creates the chain. Backend order is fallback order.
func NewSynthesizer(store storage.Storage, backends ...Backend) *Synthesizer {
	return &Synthesizer{
		backends:  backends,
		sanitizer: texttools.NewTextSanitizer(),
		store:     store,
	}
}

// Synthesize produces voiceover audio for the text and uploads it to blob
// storage. A backend failure is logged and the chain moves on; only when
// every backend fails does the call return a SynthesisError.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*Result, error) {
	if len(s.backends) == 0 {
		return nil, fmt.Errorf("no TTS backends configured")
	}

	failures := make(map[string]error, len(s.backends))
	for _, backend := range s.backends {
		prepared := s.sanitizer.Sanitize(text, backend.MaxChars())
		if prepared == "" {
			failures[backend.Name()] = fmt.Errorf("text is empty after sanitization")
			continue
		}

		audio, contentType, err := backend.Synthesize(ctx, prepared)
		if err != nil {
			log.Warn().
				Err(err).
				Str("backend", backend.Name()).
				Int("chars", len([]rune(prepared))).
				Msg("TTS backend failed, trying next")
			failures[backend.Name()] = err
			continue
		}

		key := fmt.Sprintf("audio/%s.mp3", id.New())
		audioURL, err := s.store.Upload(ctx, key, bytes.NewReader(audio), contentType)
		if err != nil {
			return nil, fmt.Errorf("upload synthesized audio: %w", err)
		}

		log.Info().
			Str("backend", backend.Name()).
			Str("audio_url", audioURL).
			Int("bytes", len(audio)).
			Msg("voiceover synthesized")

		return &Result{
			AudioURL: audioURL,
			Backend:  backend.Name(),
			Chars:    len([]rune(prepared)),
		}, nil
	}

	return nil, &SynthesisError{Failures: failures}
}
