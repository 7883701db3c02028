// Package ai provides the classifier backends used for provider selection.
package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"vidops/internal/ai/component"
	"vidops/internal/config"
	"vidops/internal/pkg/ark"
)

// EinoClassifier answers selection prompts through an eino ChatModel
// (openai, azure, or ark).
type EinoClassifier struct {
	chatModel model.ChatModel
}

// NewEinoClassifier builds the classifier for the configured provider.
func NewEinoClassifier(ctx context.Context, cfg *config.AIConfig) (*EinoClassifier, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return &EinoClassifier{chatModel: chatModel}, nil
}

// Generate sends the prompt as a single user message and returns the raw
// model answer.
func (c *EinoClassifier) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("chat model generate: %w", err)
	}
	return msg.Content, nil
}

// ArkClassifier answers selection prompts through the official volcengine
// SDK directly, bypassing eino. Selected with provider "ark-sdk".
type ArkClassifier struct {
	client *ark.Client
}

// NewArkClassifier builds the SDK-backed classifier.
func NewArkClassifier(cfg *config.AIConfig) (*ArkClassifier, error) {
	client, err := ark.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create ark client: %w", err)
	}
	return &ArkClassifier{client: client}, nil
}

// Generate sends the prompt and returns the first choice's text.
func (c *ArkClassifier) Generate(ctx context.Context, prompt string) (string, error) {
	return c.client.CreateChatCompletionSimple(ctx, prompt)
}
