// Package memory is a process-local domain.Store used for single-session study
// and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"questionbank/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	units     map[uuid.UUID]domain.Unit
	sets      map[uuid.UUID]domain.QuestionSet
	chunks    map[domain.Scope][]domain.Chunk
	exchanges []domain.Exchange
}

func New() *Store {
	return &Store{
		units:  make(map[uuid.UUID]domain.Unit),
		sets:   make(map[uuid.UUID]domain.QuestionSet),
		chunks: make(map[domain.Scope][]domain.Chunk),
	}
}

func (s *Store) CreateUnit(_ context.Context, unit domain.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[unit.ID] = unit
	return nil
}

func (s *Store) GetUnit(_ context.Context, id uuid.UUID) (domain.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[id]
	if !ok {
		return domain.Unit{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListUnits(_ context.Context, userID string) ([]domain.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Unit
	for _, u := range s.units {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateUnitSummary(_ context.Context, id uuid.UUID, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Summary = summary
	s.units[id] = u
	return nil
}

func (s *Store) ReplaceChunks(_ context.Context, scope domain.Scope, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[scope] = append([]domain.Chunk(nil), chunks...)
	return nil
}

// ListChunks returns the scope's chunks in the order they were stored.
func (s *Store) ListChunks(_ context.Context, scope domain.Scope) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Chunk(nil), s.chunks[scope]...), nil
}

func (s *Store) SaveQuestionSet(_ context.Context, set domain.QuestionSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[set.ID] = set
	return nil
}

func (s *Store) GetQuestionSet(_ context.Context, id uuid.UUID) (domain.QuestionSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[id]
	if !ok {
		return domain.QuestionSet{}, domain.ErrNotFound
	}
	return set, nil
}

// ListQuestionSets returns the scope's sets, newest first.
func (s *Store) ListQuestionSets(ctx context.Context, scope domain.Scope) ([]domain.QuestionSet, error) {
	return s.filterSets(scope, func(domain.QuestionSet) bool { return true }), nil
}

func (s *Store) SearchQuestionSets(_ context.Context, scope domain.Scope, topic string) ([]domain.QuestionSet, error) {
	return s.filterSets(scope, func(set domain.QuestionSet) bool { return set.MatchesTopic(topic) }), nil
}

func (s *Store) filterSets(scope domain.Scope, keep func(domain.QuestionSet) bool) []domain.QuestionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.QuestionSet
	for _, set := range s.sets {
		if set.Scope() == scope && keep(set) {
			out = append(out, set)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) DeleteQuestionSet(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sets, id)
	return nil
}

func (s *Store) AppendExchange(_ context.Context, ex domain.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, ex)
	return nil
}

// ListExchanges returns the scope's exchanges in the order they were appended.
func (s *Store) ListExchanges(_ context.Context, scope domain.Scope) ([]domain.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Exchange
	for _, ex := range s.exchanges {
		if ex.UserID == scope.UserID && ex.UnitID == scope.UnitID {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
