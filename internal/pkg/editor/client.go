// Package editor talks to the remote timeline-compositing render service.
package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"vidops/internal/pkg/timeline"
)

// RenderState is the editor's job status.
type RenderState string

const (
	RenderStateQueued    RenderState = "queued"
	RenderStateFetching  RenderState = "fetching"
	RenderStateRendering RenderState = "rendering"
	RenderStateSaving    RenderState = "saving"
	RenderStateDone      RenderState = "done"
	RenderStateFailed    RenderState = "failed"
)

// RenderStatus is one poll observation of a submitted render.
type RenderStatus struct {
	State RenderState `json:"status"`
	URL   string      `json:"url,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Output configures the rendered file.
type Output struct {
	Format     string `json:"format"`
	Resolution string `json:"resolution"`
}

// DefaultOutput is vertical-social friendly.
var DefaultOutput = Output{Format: "mp4", Resolution: "hd"}

// ClientConfig configures the editor client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
}

// Client is the compositing service API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates the client. Missing credentials fail here, before any
// network call.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("editor base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("editor API key is required")
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// SubmitRender submits an edit spec and returns the remote render ID.
func (c *Client) SubmitRender(ctx context.Context, spec *timeline.Spec, output Output) (string, error) {
	body, err := json.Marshal(map[string]any{
		"timeline": spec,
		"output":   output,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/render", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	log.Debug().Str("api_url", apiURL).Msg("submitting render")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("submit render failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.ID == "" {
		return "", fmt.Errorf("render ID is empty in response")
	}

	return apiResp.ID, nil
}

// GetRender polls the render status.
func (c *Client) GetRender(ctx context.Context, renderID string) (*RenderStatus, error) {
	apiURL := fmt.Sprintf("%s/render/%s", c.baseURL, renderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("poll render failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	status := &RenderStatus{}
	if err := json.NewDecoder(resp.Body).Decode(status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return status, nil
}
