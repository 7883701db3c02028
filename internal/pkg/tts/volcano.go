package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vidops/internal/pkg/id"
)

const (
	defaultVolcanoAPIURL     = "https://openspeech.bytedance.com/api/v1/tts"
	defaultVolcanoCluster    = "volcano_tts"
	defaultVolcanoVoiceType  = "BV115_streaming"
	defaultVolcanoSampleRate = 44100
	defaultVolcanoMaxChars   = 1024

	// The openspeech API signals success with code 3000, not HTTP status.
	volcanoSuccessCode = 3000
)

// VolcanoConfig configures the openspeech TTS backend.
type VolcanoConfig struct {
	APIURL      string
	AccessToken string
	AppID       string
	Cluster     string
	VoiceType   string
	SampleRate  int
	MaxChars    int
}

// Volcano is the openspeech fallback backend. Cheaper and with a tighter
// character ceiling than the primary.
type Volcano struct {
	apiURL      string
	accessToken string
	appID       string
	cluster     string
	voiceType   string
	sampleRate  int
	maxChars    int
	httpClient  *http.Client
}

// NewVolcano creates the backend.
func NewVolcano(cfg VolcanoConfig) (*Volcano, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("TTS access token is required")
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultVolcanoAPIURL
	}
	cluster := cfg.Cluster
	if cluster == "" {
		cluster = defaultVolcanoCluster
	}
	voiceType := cfg.VoiceType
	if voiceType == "" {
		voiceType = defaultVolcanoVoiceType
	}
	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultVolcanoSampleRate
	}
	maxChars := cfg.MaxChars
	if maxChars == 0 {
		maxChars = defaultVolcanoMaxChars
	}

	return &Volcano{
		apiURL:      apiURL,
		accessToken: cfg.AccessToken,
		appID:       cfg.AppID,
		cluster:     cluster,
		voiceType:   voiceType,
		sampleRate:  sampleRate,
		maxChars:    maxChars,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (v *Volcano) Name() string { return "volcano" }

func (v *Volcano) MaxChars() int { return v.maxChars }

// Synthesize sends a query-mode TTS request and decodes the base64 audio
// from the response body.
func (v *Volcano) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	requestID := id.New()
	reqBody, err := json.Marshal(v.buildRequestConfig(text, requestID))
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	// The openspeech auth scheme uses a semicolon, not a plain Bearer token.
	req.Header.Set("Authorization", fmt.Sprintf("Bearer; %s", v.accessToken))
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("TTS request failed: status %d, body: %s",
			resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Code    float64 `json:"code"`
		Message string  `json:"message"`
		Data    string  `json:"data"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, "", fmt.Errorf("parse response: %w", err)
	}

	if apiResp.Code != volcanoSuccessCode {
		message := apiResp.Message
		if message == "" {
			message = "unknown error"
		}
		return nil, "", fmt.Errorf("TTS response error: %s (code: %.0f)", message, apiResp.Code)
	}
	if apiResp.Data == "" {
		return nil, "", fmt.Errorf("audio data not found in response")
	}

	audio, err := base64.StdEncoding.DecodeString(apiResp.Data)
	if err != nil {
		return nil, "", fmt.Errorf("decode audio data: %w", err)
	}

	return audio, "audio/mpeg", nil
}

func (v *Volcano) buildRequestConfig(text, requestID string) map[string]any {
	appConfig := map[string]any{
		"token":   v.accessToken,
		"cluster": v.cluster,
	}
	if v.appID != "" {
		appConfig["appid"] = v.appID
	}

	return map[string]any{
		"app": appConfig,
		"user": map[string]any{
			"uid": requestID,
		},
		"audio": map[string]any{
			"voice_type":  v.voiceType,
			"encoding":    "mp3",
			"sample_rate": v.sampleRate,
			"speed_ratio": 1.0,
		},
		"request": map[string]any{
			"reqid":     requestID,
			"text":      text,
			"text_type": "plain",
			"operation": "query",
		},
	}
}
