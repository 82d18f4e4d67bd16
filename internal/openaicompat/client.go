// Package openaicompat is a small JSON-over-HTTP client for OpenAI-compatible
// APIs (OpenAI, Together, Ollama) with retries and client-side rate limiting.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Config configures a Client.
type Config struct {
	BaseURL           string
	APIKeyEnv         string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int // 0 disables rate limiting
	RequireAPIKey     bool
}

// StatusError is returned when the API answers with a non-retryable status.
type StatusError struct {
	Status string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "request failed: " + e.Status
	}
	return fmt.Sprintf("request failed: %s: %s", e.Status, e.Body)
}

// Client posts JSON payloads to an OpenAI-compatible endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a Client. The API key is read from the environment variable named
// by cfg.APIKeyEnv; a missing key is an error only when cfg.RequireAPIKey is set.
func New(cfg Config) (*Client, error) {
	key := ""
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	if key == "" && cfg.RequireAPIKey {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     key,
		http:       &http.Client{Timeout: t},
		maxRetries: cfg.MaxRetries,
		sleep:      sleepCtx,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c, nil
}

// PostJSON sends body to path and returns the raw response payload. Transport
// errors, 429 and 5xx responses are retried with exponential backoff, honoring
// Retry-After when present.
func (c *Client) PostJSON(ctx context.Context, path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, retryDelay(attempt-1, lastErr)); err != nil {
				return nil, err
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		payload, err := c.do(ctx, url, data)
		if err == nil {
			return payload, nil
		}
		if !retryable(err) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, url string, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &transientError{err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transientError{err: err}
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &transientError{
			err:        &StatusError{Status: resp.Status, Code: resp.StatusCode, Body: snippet(payload)},
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.Status, Code: resp.StatusCode, Body: snippet(payload)}
	}
	return payload, nil
}

type transientError struct {
	err        error
	retryAfter time.Duration
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func retryable(err error) bool {
	_, ok := err.(*transientError)
	return ok
}

func retryDelay(attempt int, last error) time.Duration {
	if te, ok := last.(*transientError); ok && te.retryAfter > 0 {
		return te.retryAfter
	}
	if attempt < 0 {
		attempt = 0
	}
	// exponential backoff capped at 5s
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second || d <= 0 {
		d = 5 * time.Second
	}
	return d
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 256 {
		s = s[:256] + "..."
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
