package openai

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"questionbank/internal/openaicompat"
)

// Client is an OpenAI-compatible embeddings client implementing domain.Embedder.
// It also understands the Ollama-native response shape.
type Client struct {
	api       *openaicompat.Client
	model     string
	dimension atomic.Int64
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL           string
	APIKeyEnv         string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute int
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	api, err := openaicompat.New(openaicompat.Config{
		BaseURL:           cfg.BaseURL,
		APIKeyEnv:         cfg.APIKeyEnv,
		Timeout:           cfg.Timeout,
		MaxRetries:        5,
		RequestsPerMinute: cfg.RequestsPerMinute,
		RequireAPIKey:     true,
	})
	if err != nil {
		return nil, err
	}
	return &Client{api: api, model: cfg.Model}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Prepare is not required for remote embedding. The dimension is learned on first embed.
func (c *Client) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors.
func (c *Client) Dimension() int { return int(c.dimension.Load()) }

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	body := struct {
		Input  string `json:"input,omitempty"`
		Prompt string `json:"prompt,omitempty"`
		Model  string `json:"model"`
	}{Input: text, Prompt: text, Model: c.model}

	payload, err := c.api.PostJSON(ctx, "embeddings", body)
	if err != nil {
		return nil, err
	}
	v, err := decodeEmbedding(payload)
	if err != nil {
		return nil, err
	}
	c.dimension.CompareAndSwap(0, int64(len(v)))
	return v, nil
}

func decodeEmbedding(payload []byte) ([]float64, error) {
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil {
		if len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
			return openaiOut.Data[0].Embedding, nil
		}
	}
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 {
		return ollamaOut.Embedding, nil
	}
	return nil, errors.New("no embedding returned")
}
