package tfidf

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"questionbank/internal/textutil"
)

var ErrNotPrepared = errors.New("tfidf embedder not prepared")

// Embedder implements a simple TF-IDF vectorizer.
// It builds a vocabulary from the lecture chunks and computes smoothed IDF values.
// Embedding is safe for concurrent use; Prepare replaces the vector space.
type Embedder struct {
	mu         sync.RWMutex
	vocabulary map[string]int
	idf        []float64
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range textutil.Terms(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}
	// stable vocabulary order keeps vectors reproducible
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocabulary[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	e.mu.Lock()
	e.vocabulary = vocabulary
	e.idf = idf
	e.mu.Unlock()
	return nil
}

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.idf)
}

// Embed computes the L2-normalized TF-IDF embedding for the given text.
// Text without known terms yields a zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.vocabulary == nil {
		return nil, ErrNotPrepared
	}
	vec := make([]float64, len(e.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range textutil.Terms(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	norm := 0.0
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
		norm += vec[idx] * vec[idx]
	}
	norm = math.Sqrt(norm)
	for idx := range tf {
		vec[idx] /= norm
	}
	return vec, nil
}
