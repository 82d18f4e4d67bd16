package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"questionbank/internal/domain"
	"questionbank/internal/prompt"
	"questionbank/internal/question"
)

// GenerateRequest asks for a new question set.
type GenerateRequest struct {
	Scope domain.Scope
	Type  question.Type
	Topic string // empty generates from the unit summary
	Style string // optional example question to imitate
	Count int    // zero uses the configured question count
}

// Generation is the outcome of GenerateQuestions.
type Generation struct {
	Set    domain.QuestionSet
	Raw    string
	Report question.Report
}

// GenerateQuestions builds context for the request, asks the model for
// questions, extracts them and persists the resulting set. A reply with no
// usable block yields ErrNoQuestions together with the raw text and report.
func (s *Service) GenerateQuestions(ctx context.Context, req GenerateRequest) (Generation, error) {
	typ, err := question.ParseType(string(req.Type))
	if err != nil {
		return Generation{}, err
	}
	unit, err := s.Unit(ctx, req.Scope)
	if err != nil {
		return Generation{}, err
	}
	topic := strings.TrimSpace(req.Topic)
	count := req.Count
	if count <= 0 {
		count = s.opts.QuestionCount
	}

	lecture, err := s.generationContext(ctx, unit, topic)
	if err != nil {
		return Generation{}, err
	}

	msgs := prompt.Generation{
		Type:    typ,
		Count:   count,
		Topic:   topic,
		Context: lecture,
		Style:   strings.TrimSpace(req.Style),
	}.Messages()
	raw, err := s.completer.Complete(ctx, msgs)
	if err != nil {
		return Generation{}, collabErr(CollaboratorLLM, "generate questions", err)
	}

	questions, report := question.ExtractWithReport(raw, typ)
	for _, d := range report.Dropped {
		s.log.Warn("dropped question block",
			zap.Stringer("unit", unit.ID),
			zap.Int("block", d.Block),
			zap.String("reason", d.Reason),
		)
	}
	gen := Generation{Raw: raw, Report: report}
	if len(questions) == 0 {
		return gen, ErrNoQuestions
	}

	gen.Set = domain.QuestionSet{
		ID:        uuid.New(),
		UserID:    req.Scope.UserID,
		UnitID:    unit.ID,
		Topic:     topic,
		Type:      typ,
		Questions: questions,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveQuestionSet(ctx, gen.Set); err != nil {
		return gen, collabErr(CollaboratorStore, "save question set", err)
	}
	s.log.Info("question set generated",
		zap.Stringer("set", gen.Set.ID),
		zap.String("topic", topic),
		zap.Stringer("type", typ),
		zap.Int("questions", len(questions)),
		zap.Int("dropped", len(report.Dropped)),
	)
	return gen, nil
}

// generationContext retrieves passages for topic, or falls back to the unit
// summary when no topic is given.
func (s *Service) generationContext(ctx context.Context, unit domain.Unit, topic string) (string, error) {
	if topic == "" {
		if strings.TrimSpace(unit.Summary) == "" {
			return "", ErrNoContext
		}
		return prompt.Truncate(unit.Summary, s.opts.ContextChars), nil
	}
	hits, err := s.Search(ctx, unit.Scope(), topic, s.opts.RetrieveTopK)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", ErrNoContext
	}
	passages := make([]string, len(hits))
	for i, h := range hits {
		passages[i] = h.Chunk.Text
	}
	return prompt.JoinContext(passages, s.opts.ContextChars), nil
}
