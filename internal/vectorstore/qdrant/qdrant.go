package qdrant

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"questionbank/internal/domain"
)

// Storage is a minimal REST client to Qdrant. Each namespace maps onto its own
// collection using cosine distance, created on Init when missing.
type Storage struct {
	url    string
	apiKey string
	prefix string
	client *http.Client
}

type Config struct {
	URL              string
	APIKey           string
	CollectionPrefix string
	Timeout          time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	prefix := cfg.CollectionPrefix
	if prefix == "" {
		prefix = "lectures"
	}
	return &Storage{
		url:    strings.TrimRight(cfg.URL, "/"),
		apiKey: cfg.APIKey,
		prefix: prefix,
		client: &http.Client{Timeout: timeout},
	}
}

// Collection returns the collection name used for a namespace.
func (s *Storage) Collection(namespace string) string {
	h := sha1.Sum([]byte(namespace))
	return s.prefix + "_" + hex.EncodeToString(h[:8])
}

func pointID(namespace, chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(namespace+"#"+chunkID)).String()
}

func (s *Storage) Init(ctx context.Context, namespace string, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	collURL := fmt.Sprintf("%s/collections/%s", s.url, s.Collection(namespace))
	status, err := s.send(ctx, http.MethodGet, collURL, nil, nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.expectOK(s.send(ctx, http.MethodPut, collURL, body, nil))
}

func (s *Storage) Upsert(ctx context.Context, namespace string, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if len(chunks) == 0 {
		return nil
	}
	points := make([]map[string]any, len(chunks))
	for i := range chunks {
		points[i] = map[string]any{
			"id":     pointID(namespace, chunks[i].ChunkID),
			"vector": vectors[i],
			"payload": map[string]any{
				"namespace":   namespace,
				"document_id": chunks[i].DocumentID,
				"chunk_id":    chunks[i].ChunkID,
				"index":       chunks[i].Index,
				"text":        chunks[i].Text,
			},
		}
	}
	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.Collection(namespace))
	return s.expectOK(s.send(ctx, http.MethodPut, url, body, nil))
}

func (s *Storage) Search(ctx context.Context, namespace string, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.url, s.Collection(namespace))
	status, err := s.send(ctx, http.MethodPost, url, req, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err := s.expectOK(status, nil); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := domain.Chunk{}
		if v, ok := r.Payload["document_id"].(string); ok {
			chunk.DocumentID = v
		}
		if v, ok := r.Payload["chunk_id"].(string); ok {
			chunk.ChunkID = v
		}
		if v, ok := r.Payload["index"].(float64); ok {
			chunk.Index = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			chunk.Text = v
		}
		results = append(results, domain.SearchResult{Chunk: chunk, Score: r.Score})
	}
	return results, nil
}

// Clear drops the namespace's collection; a missing collection is not an error.
func (s *Storage) Clear(ctx context.Context, namespace string) error {
	url := fmt.Sprintf("%s/collections/%s", s.url, s.Collection(namespace))
	status, err := s.send(ctx, http.MethodDelete, url, nil, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return nil
	}
	return s.expectOK(status, nil)
}

// Count reads the point count of the namespace's collection.
func (s *Storage) Count(ctx context.Context, namespace string) (int, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s", s.url, s.Collection(namespace))
	status, err := s.send(ctx, http.MethodGet, url, nil, &resp)
	if err != nil {
		return 0, err
	}
	if status == http.StatusNotFound {
		return 0, nil
	}
	if err := s.expectOK(status, nil); err != nil {
		return 0, err
	}
	return resp.Result.PointsCount, nil
}

func (s *Storage) expectOK(status int, err error) error {
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant request failed: %d %s", status, http.StatusText(status))
	}
	return nil
}

// send performs the request and decodes a 2xx body into out when given.
func (s *Storage) send(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}
	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("qdrant decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
