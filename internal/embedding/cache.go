// Package embedding holds helpers shared by the embedder implementations.
package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"questionbank/internal/domain"
)

// Cached memoizes the vectors of an embedder. The cache is dropped whenever
// the wrapped embedder is prepared again, since its vector space may change.
type Cached struct {
	inner domain.Embedder
	cache *lru.Cache[string, []float64]
}

// NewCached wraps inner with an LRU cache holding up to size vectors.
func NewCached(inner domain.Embedder, size int) (*Cached, error) {
	if size <= 0 {
		size = 512
	}
	c, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}
	return &Cached{inner: inner, cache: c}, nil
}

func (c *Cached) Name() string   { return c.inner.Name() }
func (c *Cached) Dimension() int { return c.inner.Dimension() }

func (c *Cached) Prepare(corpus []string) error {
	c.cache.Purge()
	return c.inner.Prepare(corpus)
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float64, error) {
	if v, ok := c.cache.Get(text); ok {
		return v, nil
	}
	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, v)
	return v, nil
}

// Len is the number of cached vectors.
func (c *Cached) Len() int { return c.cache.Len() }
