package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"questionbank/internal/domain"
	"questionbank/internal/prompt"
	"questionbank/internal/ranker"
)

// Answer is the reply to Ask with the history and passages it was built from.
type Answer struct {
	Text     string
	History  []ranker.RankedExchange
	Passages []domain.SearchResult
}

// Ask answers question from the unit's lecture material and the most similar
// past exchanges, then records the new exchange.
func (s *Service) Ask(ctx context.Context, scope domain.Scope, q string) (Answer, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Answer{}, ErrEmptyQuery
	}
	if _, err := s.Unit(ctx, scope); err != nil {
		return Answer{}, err
	}
	if err := s.ensureIndexed(ctx, scope); err != nil {
		return Answer{}, err
	}

	queryVec, err := s.embedder.Embed(ctx, q)
	if err != nil {
		return Answer{}, collabErr(CollaboratorEmbedder, "embed question", err)
	}
	history, err := s.RelevantHistory(ctx, scope, queryVec)
	if err != nil {
		return Answer{}, err
	}
	passages, err := s.Search(ctx, scope, q, s.opts.RetrieveTopK)
	if err != nil {
		return Answer{}, err
	}
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Chunk.Text
	}

	msgs := prompt.Answer{
		Question: q,
		Context:  prompt.JoinContext(texts, s.opts.ContextChars),
		History:  history,
	}.Messages()
	reply, err := s.completer.Complete(ctx, msgs)
	if err != nil {
		return Answer{}, collabErr(CollaboratorLLM, "answer question", err)
	}

	ex := domain.Exchange{
		ID:        uuid.New(),
		UserID:    scope.UserID,
		UnitID:    scope.UnitID,
		Question:  q,
		Answer:    reply,
		Embedding: queryVec,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AppendExchange(ctx, ex); err != nil {
		return Answer{}, collabErr(CollaboratorStore, "append exchange", err)
	}
	s.log.Debug("question answered",
		zap.String("namespace", scope.Namespace()),
		zap.Int("history", len(history)),
		zap.Int("passages", len(passages)),
	)
	return Answer{Text: reply, History: history, Passages: passages}, nil
}

// RelevantHistory ranks the scope's past exchanges against queryVec. Exchanges
// embedded in a different vector space (another dimensionality) are skipped.
func (s *Service) RelevantHistory(ctx context.Context, scope domain.Scope, queryVec []float64) ([]ranker.RankedExchange, error) {
	past, err := s.store.ListExchanges(ctx, scope)
	if err != nil {
		return nil, collabErr(CollaboratorStore, "list exchanges", err)
	}
	corpus := make([]ranker.Exchange, 0, len(past))
	skipped := 0
	for _, ex := range past {
		if len(ex.Embedding) != len(queryVec) {
			skipped++
			continue
		}
		corpus = append(corpus, ranker.Exchange{Question: ex.Question, Answer: ex.Answer, Embedding: ex.Embedding})
	}
	if skipped > 0 {
		s.log.Debug("skipped exchanges with mismatched embeddings", zap.Int("skipped", skipped))
	}
	return ranker.Rank(queryVec, corpus, s.opts.HistoryTopK), nil
}
