// Package openai implements domain.Completer against OpenAI-compatible chat
// completion endpoints such as Together AI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"questionbank/internal/domain"
	"questionbank/internal/openaicompat"
)

// ErrEmptyCompletion is returned when the model answers with no content.
var ErrEmptyCompletion = errors.New("empty completion")

// Config configures the chat client.
type Config struct {
	BaseURL           string
	APIKeyEnv         string
	Model             string
	Temperature       float64
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerMinute int
}

// Chat sends conversations to /chat/completions.
type Chat struct {
	api         *openaicompat.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewChat(cfg Config) (*Chat, error) {
	if cfg.Model == "" {
		return nil, errors.New("chat model is required")
	}
	api, err := openaicompat.New(openaicompat.Config{
		BaseURL:           cfg.BaseURL,
		APIKeyEnv:         cfg.APIKeyEnv,
		Timeout:           cfg.Timeout,
		MaxRetries:        3,
		RequestsPerMinute: cfg.RequestsPerMinute,
		RequireAPIKey:     true,
	})
	if err != nil {
		return nil, err
	}
	return &Chat{api: api, model: cfg.Model, temperature: cfg.Temperature, maxTokens: cfg.MaxTokens}, nil
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []domain.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message domain.Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete returns the trimmed content of the first choice.
func (c *Chat) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	payload, err := c.api.PostJSON(ctx, "chat/completions", chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("chat completion: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
