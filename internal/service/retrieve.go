package service

import (
	"context"
	"math"
	"sort"

	"questionbank/internal/domain"
	"questionbank/internal/textutil"
)

// Search returns the scope's chunks most relevant to query. When the query
// embeds to a zero vector, or every hit scores zero, the scope's chunks are
// ranked by word overlap instead.
func (s *Service) Search(ctx context.Context, scope domain.Scope, query string, topK int) ([]domain.SearchResult, error) {
	if err := s.ensureIndexed(ctx, scope); err != nil {
		return nil, err
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, collabErr(CollaboratorEmbedder, "embed query", err)
	}
	if isZero(vec) {
		return s.lexicalSearch(scope, query, topK), nil
	}
	res, err := s.vectors.Search(ctx, scope.Namespace(), vec, topK)
	if err != nil {
		return nil, collabErr(CollaboratorVectorStore, "search", err)
	}
	for _, r := range res {
		if r.Score > 1e-9 {
			return res, nil
		}
	}
	if lex := s.lexicalSearch(scope, query, topK); len(lex) > 0 {
		return lex, nil
	}
	return res, nil
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func (s *Service) lexicalSearch(scope domain.Scope, query string, topK int) []domain.SearchResult {
	s.mu.RLock()
	chunks := s.chunks[scope.Namespace()]
	s.mu.RUnlock()

	qset := toTokenSet(query)
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(chunks))
	for i, ch := range chunks {
		scores[i] = pair{i, overlapOchiai(qset, ch.Text)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK <= 0 {
		topK = 5
	}
	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]domain.SearchResult, 0, topK)
	for _, p := range scores[:topK] {
		out = append(out, domain.SearchResult{Chunk: chunks[p.idx], Score: p.score})
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	words := textutil.Words(s)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// overlapOchiai is |A∩B| / sqrt(|A||B|) over the distinct words of query and text.
func overlapOchiai(qset map[string]struct{}, text string) float64 {
	seen := toTokenSet(text)
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	inter := 0
	for t := range seen {
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(qset))*float64(len(seen)))
}
