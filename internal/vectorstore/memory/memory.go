package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"questionbank/internal/domain"
	"questionbank/internal/ranker"
	"questionbank/internal/vectorstore"
)

type index struct {
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu      sync.RWMutex
	indexes map[string]*index
}

func NewStorage() *Storage { return &Storage{indexes: make(map[string]*index)} }

// Init creates or resets the namespace for vectors of the given dimension.
func (s *Storage) Init(_ context.Context, namespace string, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[namespace] = &index{dimension: dimension}
	return nil
}

func (s *Storage) Upsert(_ context.Context, namespace string, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indexes[namespace]
	if !ok {
		return vectorstore.ErrNotInitialized
	}
	for _, v := range vectors {
		if len(v) != idx.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	byID := make(map[string]int, len(idx.chunks))
	for i, c := range idx.chunks {
		byID[c.ChunkID] = i
	}
	for i, c := range chunks {
		if j, ok := byID[c.ChunkID]; ok {
			idx.chunks[j] = c
			idx.vectors[j] = vectors[i]
			continue
		}
		byID[c.ChunkID] = len(idx.chunks)
		idx.chunks = append(idx.chunks, c)
		idx.vectors = append(idx.vectors, vectors[i])
	}
	return nil
}

// Search returns the topK most similar chunks (5 when topK <= 0). An unknown
// namespace has nothing indexed and yields no results.
func (s *Storage) Search(_ context.Context, namespace string, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	idx, ok := s.indexes[namespace]
	if !ok {
		return nil, nil
	}
	results := make([]domain.SearchResult, len(idx.vectors))
	for i := range idx.vectors {
		results[i] = domain.SearchResult{Chunk: idx.chunks[i], Score: ranker.CosineSimilarity(vector, idx.vectors[i])}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *Storage) Clear(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.indexes[namespace]; ok {
		idx.vectors = nil
		idx.chunks = nil
	}
	return nil
}

func (s *Storage) Count(_ context.Context, namespace string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[namespace]
	if !ok {
		return 0, nil
	}
	return len(idx.vectors), nil
}
