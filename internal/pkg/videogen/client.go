package videogen

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
)

// TaskState is the render gateway's job status.
type TaskState string

const (
	TaskStateQueued     TaskState = "queued"
	TaskStateProcessing TaskState = "processing"
	TaskStateSucceeded  TaskState = "succeeded"
	TaskStateFailed     TaskState = "failed"
)

// TaskStatus is one poll observation. Duration is the measured length of the
// rendered video, reported by the gateway; downstream compositing must use
// this value, never an estimate.
type TaskStatus struct {
	State    TaskState `json:"status"`
	VideoURL string    `json:"video_url,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// ClientConfig configures the render gateway client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
}

// Client talks to the remote render gateway that fronts all video providers.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a gateway client. Missing credentials fail here, before
// any network call.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("render gateway base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("render gateway API key is required")
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// SubmitTask submits a generation job and returns the remote task ID.
func (c *Client) SubmitTask(ctx context.Context, providerID string, input map[string]any) (string, error) {
	body, err := json.Marshal(map[string]any{
		"provider": providerID,
		"input":    input,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1/tasks", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	log.Debug().Str("provider", providerID).Str("api_url", apiURL).Msg("submitting generation task")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("provider", providerID).
			Str("response_body", string(respBody)).
			Msg("task submission failed")
		return "", fmt.Errorf("submit task failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.TaskID == "" {
		return "", fmt.Errorf("task ID is empty in response")
	}

	return apiResp.TaskID, nil
}

// GetTask polls the task status.
func (c *Client) GetTask(ctx context.Context, taskID string) (*TaskStatus, error) {
	apiURL := fmt.Sprintf("%s/v1/tasks/%s", c.baseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("poll task failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	status := &TaskStatus{}
	if err := json.NewDecoder(resp.Body).Decode(status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return status, nil
}
