package vectorstore

import (
	"context"
	"errors"

	"questionbank/internal/domain"
)

// ErrNotInitialized is returned when a namespace is searched or written before Init.
var ErrNotInitialized = errors.New("vector namespace not initialized")

// Storage persists chunk vectors and supports similarity search. Every call is
// scoped to a namespace (one per user and unit), so indexes never leak across units.
type Storage interface {
	Init(ctx context.Context, namespace string, dimension int) error
	Upsert(ctx context.Context, namespace string, chunks []domain.Chunk, vectors [][]float64) error
	Search(ctx context.Context, namespace string, vector []float64, topK int) ([]domain.SearchResult, error)
	Clear(ctx context.Context, namespace string) error
	// Count is the number of vectors held for the namespace, 0 when it does not exist.
	Count(ctx context.Context, namespace string) (int, error)
}
