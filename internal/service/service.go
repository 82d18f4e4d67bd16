// Package service wires the question extraction and history ranking logic to
// the embedding, vector index, completion and storage collaborators.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"questionbank/internal/domain"
	"questionbank/internal/vectorstore"
)

// Options tunes the service. Zero values fall back to the defaults below.
type Options struct {
	SummaryMaxSentences int
	QuestionCount       int
	ContextChars        int
	RetrieveTopK        int
	HistoryTopK         int
	IngestConcurrency   int
}

func (o *Options) applyDefaults() {
	if o.SummaryMaxSentences <= 0 {
		o.SummaryMaxSentences = 5
	}
	if o.QuestionCount <= 0 {
		o.QuestionCount = 5
	}
	if o.ContextChars <= 0 {
		o.ContextChars = 6000
	}
	if o.RetrieveTopK <= 0 {
		o.RetrieveTopK = 8
	}
	if o.HistoryTopK <= 0 {
		o.HistoryTopK = 5
	}
	if o.IngestConcurrency <= 0 {
		o.IngestConcurrency = 4
	}
}

// Deps are the collaborators the service drives.
type Deps struct {
	Chunker    domain.Chunker
	Embedder   domain.Embedder
	Vectors    vectorstore.Storage
	Summarizer domain.Summarizer
	Completer  domain.Completer
	Store      domain.Store
}

type Service struct {
	chunker    domain.Chunker
	embedder   domain.Embedder
	vectors    vectorstore.Storage
	summarizer domain.Summarizer
	completer  domain.Completer
	store      domain.Store
	opts       Options
	log        *zap.Logger
	now        func() time.Time

	mu     sync.RWMutex
	chunks map[string][]domain.Chunk // indexed chunks per namespace, for lexical fallback
	active string                    // namespace the embedder is currently prepared for
}

func New(deps Deps, opts Options, log *zap.Logger) *Service {
	opts.applyDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		chunker:    deps.Chunker,
		embedder:   deps.Embedder,
		vectors:    deps.Vectors,
		summarizer: deps.Summarizer,
		completer:  deps.Completer,
		store:      deps.Store,
		opts:       opts,
		log:        log,
		now:        time.Now,
		chunks:     make(map[string][]domain.Chunk),
	}
}

// CreateUnit registers a new unit for userID.
func (s *Service) CreateUnit(ctx context.Context, userID, title string) (domain.Unit, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Unit{}, errors.New("unit title is required")
	}
	unit := domain.Unit{ID: uuid.New(), UserID: userID, Title: title, CreatedAt: s.now().UTC()}
	if err := s.store.CreateUnit(ctx, unit); err != nil {
		return domain.Unit{}, collabErr(CollaboratorStore, "create unit", err)
	}
	s.log.Info("unit created", zap.String("user", userID), zap.Stringer("unit", unit.ID), zap.String("title", title))
	return unit, nil
}

func (s *Service) ListUnits(ctx context.Context, userID string) ([]domain.Unit, error) {
	units, err := s.store.ListUnits(ctx, userID)
	if err != nil {
		return nil, collabErr(CollaboratorStore, "list units", err)
	}
	return units, nil
}

// Unit returns the unit behind scope. Units owned by another user are reported
// as not found.
func (s *Service) Unit(ctx context.Context, scope domain.Scope) (domain.Unit, error) {
	unit, err := s.store.GetUnit(ctx, scope.UnitID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Unit{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Unit{}, collabErr(CollaboratorStore, "get unit", err)
	}
	if unit.UserID != scope.UserID {
		return domain.Unit{}, domain.ErrNotFound
	}
	return unit, nil
}
