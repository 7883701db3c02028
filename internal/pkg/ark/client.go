// Package ark wraps the volcengine Ark API through the official SDK, used
// as an alternative classifier backend for provider selection.
package ark

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"

	"vidops/internal/config"
)

const (
	defaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	defaultModel   = "doubao-seed-1-6-flash-250615"
)

// Client is the Ark chat-completion client.
type Client struct {
	client *arkruntime.Client
	model  string
	mu     sync.Mutex
}

// NewClient creates a client from the AI config.
func NewClient(cfg *config.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Ark API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}

	var opts []arkruntime.ConfigOption
	if baseURL != "" {
		opts = append(opts, arkruntime.WithBaseUrl(baseURL))
	}

	arkClient := arkruntime.NewClientWithApiKey(cfg.APIKey, opts...)

	return &Client{
		client: arkClient,
		model:  modelName,
	}, nil
}

// ChatCompletionRequest is a chat completion call.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// ChatCompletionResponse is the API answer.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is one completion candidate.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage is the token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CreateChatCompletion calls the chat completion API.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Model == "" {
		req.Model = c.model
	}

	input := &model.ChatCompletionRequest{
		Model:    req.Model,
		Messages: convertMessages(req.Messages),
	}

	if req.MaxTokens != nil {
		input.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		input.Temperature = float32(*req.Temperature)
	}
	if req.TopP != nil {
		input.TopP = float32(*req.TopP)
	}

	output, err := c.client.CreateChatCompletion(ctx, input)
	if err != nil {
		log.Error().Err(err).Msg("failed to call Ark ChatCompletion API")
		return nil, fmt.Errorf("Ark API call failed: %w", err)
	}

	return convertChatCompletionResponse(&output), nil
}

// CreateChatCompletionSimple sends a single user prompt and returns the
// first choice's text.
func (c *Client) CreateChatCompletionSimple(ctx context.Context, prompt string) (string, error) {
	maxTokens := 4 * 1024
	temperature := 0.2

	req := &ChatCompletionRequest{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}

func convertMessages(messages []Message) []*model.ChatCompletionMessage {
	result := make([]*model.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		content := &model.ChatCompletionMessageContent{
			StringValue: &msg.Content,
		}
		result[i] = &model.ChatCompletionMessage{
			Role:    msg.Role,
			Content: content,
		}
	}
	return result
}

func convertChatCompletionResponse(output *model.ChatCompletionResponse) *ChatCompletionResponse {
	resp := &ChatCompletionResponse{
		ID:      output.ID,
		Choices: make([]Choice, len(output.Choices)),
	}

	for i, choice := range output.Choices {
		var content string
		if choice.Message.Content != nil && choice.Message.Content.StringValue != nil {
			content = *choice.Message.Content.StringValue
		}

		resp.Choices[i] = Choice{
			Index: choice.Index,
			Message: Message{
				Role:    choice.Message.Role,
				Content: content,
			},
			FinishReason: string(choice.FinishReason),
		}
	}

	resp.Usage = &Usage{
		PromptTokens:     output.Usage.PromptTokens,
		CompletionTokens: output.Usage.CompletionTokens,
		TotalTokens:      output.Usage.TotalTokens,
	}

	return resp
}
