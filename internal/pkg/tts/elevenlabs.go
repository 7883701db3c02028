package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultElevenLabsBaseURL  = "https://api.elevenlabs.io"
	defaultElevenLabsMaxChars = 2500
	elevenLabsModelID         = "eleven_multilingual_v2"
)

// ElevenLabsConfig configures the primary TTS backend.
type ElevenLabsConfig struct {
	APIKey   string
	BaseURL  string
	VoiceID  string
	MaxChars int
}

// ElevenLabs is the paid, higher-quality backend. It sits first in the
// chain and fails on quota exhaustion or auth problems, at which point the
// chain moves on.
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	voiceID    string
	maxChars   int
	httpClient *http.Client
}

// NewElevenLabs creates the backend.
func NewElevenLabs(cfg ElevenLabsConfig) (*ElevenLabs, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs API key is required")
	}
	if cfg.VoiceID == "" {
		return nil, fmt.Errorf("elevenlabs voice ID is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultElevenLabsBaseURL
	}
	maxChars := cfg.MaxChars
	if maxChars == 0 {
		maxChars = defaultElevenLabsMaxChars
	}

	return &ElevenLabs{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		voiceID:  cfg.VoiceID,
		maxChars: maxChars,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

func (e *ElevenLabs) MaxChars() int { return e.maxChars }

// Synthesize calls the text-to-speech endpoint and returns MP3 bytes.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": elevenLabsModelID,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("elevenlabs request failed: status %d, body: %s",
			resp.StatusCode, string(respBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read audio body: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("elevenlabs returned empty audio")
	}

	return audio, "audio/mpeg", nil
}
