package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionbank/internal/chunker"
	"questionbank/internal/domain"
	"questionbank/internal/embedding/tfidf"
	"questionbank/internal/question"
	"questionbank/internal/store/memory"
	"questionbank/internal/summarizer"
	vsmemory "questionbank/internal/vectorstore/memory"
)

const (
	cellLecture = "Mitochondria produce ATP through cellular respiration. " +
		"The nucleus stores genetic information. " +
		"Ribosomes build proteins from amino acids."
	plantLecture = "Photosynthesis happens in chloroplasts. " +
		"Plants convert sunlight into chemical energy."
)

// fakeCompleter replays canned replies and records the conversations it receives.
type fakeCompleter struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]domain.Message
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []domain.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msgs)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no reply queued")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func (f *fakeCompleter) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.calls[len(f.calls)-1]
	return msgs[len(msgs)-1].Content
}

type fixture struct {
	svc   *Service
	llm   *fakeCompleter
	store *memory.Store
	scope domain.Scope
	dir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	llm := &fakeCompleter{}
	store := memory.New()
	svc := New(Deps{
		Chunker:    chunker.NewSentenceChunker(2, 0, 0),
		Embedder:   tfidf.NewEmbedder(),
		Vectors:    vsmemory.NewStorage(),
		Summarizer: summarizer.NewFrequencySummarizer(),
		Completer:  llm,
		Store:      store,
	}, Options{SummaryMaxSentences: 2, IngestConcurrency: 2}, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	unit, err := svc.CreateUnit(context.Background(), "12", "Biology")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cells.txt"), []byte(cellLecture), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plants.txt"), []byte(plantLecture), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("%PDF"), 0o644))

	return &fixture{svc: svc, llm: llm, store: store, scope: unit.Scope(), dir: dir}
}

func (f *fixture) ingest(t *testing.T) IngestResult {
	t.Helper()
	res, err := f.svc.IngestDocuments(context.Background(), f.scope, []string{filepath.Join(f.dir, "*")})
	require.NoError(t, err)
	return res
}

func TestIngestDocuments(t *testing.T) {
	f := newFixture(t)
	res := f.ingest(t)

	assert.Equal(t, 2, res.Documents)
	assert.Equal(t, 3, res.Chunks)
	assert.NotEmpty(t, res.Summary)

	unit, err := f.store.GetUnit(context.Background(), f.scope.UnitID)
	require.NoError(t, err)
	assert.Equal(t, res.Summary, unit.Summary)

	hits, err := f.svc.Search(context.Background(), f.scope, "chloroplasts photosynthesis", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Chunk.Text, "chloroplasts")
}

func TestIngestDocuments_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.IngestDocuments(ctx, f.scope, []string{filepath.Join(f.dir, "*.pdf")})
	assert.ErrorIs(t, err, ErrNoDocuments)

	foreign := domain.Scope{UserID: "99", UnitID: f.scope.UnitID}
	_, err = f.svc.IngestDocuments(ctx, foreign, []string{filepath.Join(f.dir, "*.txt")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateQuestions_ByTopic(t *testing.T) {
	f := newFixture(t)
	f.ingest(t)
	f.llm.replies = []string{`Here are your questions.
Question 1:
What do mitochondria produce?
A) DNA
B) ATP
C) Starch
D) Water
Answer: B)
Question 2:
Answer: C)
Question 3:
Where is genetic information stored?
A) Nucleus
B) Ribosome
Answer: A)`}

	gen, err := f.svc.GenerateQuestions(context.Background(), GenerateRequest{
		Scope: f.scope,
		Type:  question.MultipleChoice,
		Topic: "mitochondria",
		Style: "Which organelle ...?",
	})
	require.NoError(t, err)

	prompt := f.llm.lastPrompt()
	assert.Contains(t, prompt, "Mitochondria produce ATP")
	assert.Contains(t, prompt, "Which organelle ...?")
	assert.Contains(t, prompt, "generate 5 exam-style multiple-choice questions")

	require.Len(t, gen.Set.Questions, 2)
	assert.Equal(t, 3, gen.Report.Blocks)
	require.Len(t, gen.Report.Dropped, 1)
	assert.Equal(t, 2, gen.Report.Dropped[0].Block)

	second := gen.Set.Questions[1].(*question.MultipleChoiceQuestion)
	assert.Equal(t, 2, second.ID())
	require.NotNil(t, second.CorrectAnswer)
	assert.Equal(t, "Nucleus", *second.CorrectAnswer)

	stored, err := f.svc.QuestionSet(context.Background(), "12", gen.Set.ID)
	require.NoError(t, err)
	assert.Equal(t, "mitochondria", stored.Topic)
}

func TestGenerateQuestions_FromSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GenerateQuestions(ctx, GenerateRequest{Scope: f.scope, Type: question.TrueFalse})
	assert.ErrorIs(t, err, ErrNoContext)

	res := f.ingest(t)
	f.llm.replies = []string{"Question 1:\nPlants convert sunlight into energy.\nAnswer: True"}
	gen, err := f.svc.GenerateQuestions(ctx, GenerateRequest{Scope: f.scope, Type: "tf", Count: 1})
	require.NoError(t, err)

	assert.Contains(t, f.llm.lastPrompt(), res.Summary)
	assert.Contains(t, f.llm.lastPrompt(), "generate 1 exam-style true-false questions")
	assert.Equal(t, question.TrueFalse, gen.Set.Type)
	tf := gen.Set.Questions[0].(*question.TrueFalseQuestion)
	assert.Equal(t, question.True, tf.CorrectAnswer)
}

func TestGenerateQuestions_NothingUsable(t *testing.T) {
	f := newFixture(t)
	f.ingest(t)
	f.llm.replies = []string{"Question 1:\n\nQuestion 2:\nAnswer: True"}

	gen, err := f.svc.GenerateQuestions(context.Background(), GenerateRequest{Scope: f.scope, Type: question.TrueFalse, Topic: "plants"})
	require.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, 1, gen.Report.Blocks)
	assert.NotEmpty(t, gen.Raw)

	sets, err := f.svc.ListQuestionSets(context.Background(), f.scope)
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestGenerateQuestions_CollaboratorFailure(t *testing.T) {
	f := newFixture(t)
	f.ingest(t)
	cause := errors.New("upstream unavailable")
	f.llm.err = cause

	_, err := f.svc.GenerateQuestions(context.Background(), GenerateRequest{Scope: f.scope, Type: question.OpenEnded, Topic: "ribosomes"})
	require.Error(t, err)

	var ce *CollaboratorError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CollaboratorLLM, ce.Collaborator)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNoQuestions)
}

func TestGenerateQuestions_UnknownType(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GenerateQuestions(context.Background(), GenerateRequest{Scope: f.scope, Type: "essay", Topic: "cells"})
	assert.Error(t, err)
	assert.Empty(t, f.llm.calls)
}

func TestAsk_UsesRankedHistory(t *testing.T) {
	f := newFixture(t)
	f.ingest(t)
	ctx := context.Background()
	f.llm.replies = []string{"ATP.", "Yes, ATP.", "In the nucleus."}

	first, err := f.svc.Ask(ctx, f.scope, "What do mitochondria produce?")
	require.NoError(t, err)
	assert.Equal(t, "ATP.", first.Text)
	assert.Empty(t, first.History)
	assert.NotContains(t, f.llm.lastPrompt(), "Previously asked")

	second, err := f.svc.Ask(ctx, f.scope, "Do mitochondria produce ATP?")
	require.NoError(t, err)
	require.Len(t, second.History, 1)
	assert.Equal(t, "What do mitochondria produce?", second.History[0].Question)
	assert.Greater(t, second.History[0].Score, 0.0)
	assert.Contains(t, f.llm.lastPrompt(), "Q: What do mitochondria produce?\nA: ATP.")

	// an exchange from another vector space must not reach the ranker
	require.NoError(t, f.store.AppendExchange(ctx, domain.Exchange{
		ID: uuid.New(), UserID: f.scope.UserID, UnitID: f.scope.UnitID,
		Question: "stale", Answer: "stale", Embedding: []float64{1},
	}))
	third, err := f.svc.Ask(ctx, f.scope, "Where is genetic information stored?")
	require.NoError(t, err)
	assert.Len(t, third.History, 2)
	for _, h := range third.History {
		assert.NotEqual(t, "stale", h.Question)
	}

	history, err := f.store.ListExchanges(ctx, f.scope)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.NotEmpty(t, history[0].Embedding)
}

func TestAsk_FreshServiceRestoresIndexFromStore(t *testing.T) {
	f := newFixture(t)
	f.ingest(t)
	ctx := context.Background()
	f.llm.replies = []string{"ATP."}
	_, err := f.svc.Ask(ctx, f.scope, "What do mitochondria produce?")
	require.NoError(t, err)

	// a later run: same store, new embedder and empty vector index
	llm := &fakeCompleter{replies: []string{"Yes, ATP.", "Question 1:\nWhere is ATP made?\nA) Mitochondria\nB) Nucleus\nAnswer: A)"}}
	vectors := vsmemory.NewStorage()
	fresh := New(Deps{
		Chunker:    chunker.NewSentenceChunker(2, 0, 0),
		Embedder:   tfidf.NewEmbedder(),
		Vectors:    vectors,
		Summarizer: summarizer.NewFrequencySummarizer(),
		Completer:  llm,
		Store:      f.store,
	}, Options{}, nil)

	ans, err := fresh.Ask(ctx, f.scope, "Do mitochondria produce ATP?")
	require.NoError(t, err)
	assert.Equal(t, "Yes, ATP.", ans.Text)
	require.Len(t, ans.History, 1)
	assert.Equal(t, "What do mitochondria produce?", ans.History[0].Question)
	assert.Greater(t, ans.History[0].Score, 0.0)
	require.NotEmpty(t, ans.Passages)
	assert.Contains(t, ans.Passages[0].Chunk.Text, "Mitochondria")

	n, err := vectors.Count(ctx, f.scope.Namespace())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	gen, err := fresh.GenerateQuestions(ctx, GenerateRequest{Scope: f.scope, Type: question.MultipleChoice, Topic: "mitochondria"})
	require.NoError(t, err)
	require.Len(t, gen.Set.Questions, 1)
	assert.Contains(t, llm.lastPrompt(), "Mitochondria produce ATP")
}

func TestSearch_NeverIngested(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Search(context.Background(), f.scope, "mitochondria", 3)
	assert.ErrorIs(t, err, ErrNoContext)

	_, err = f.svc.GenerateQuestions(context.Background(), GenerateRequest{Scope: f.scope, Type: question.TrueFalse, Topic: "mitochondria"})
	assert.ErrorIs(t, err, ErrNoContext)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Ask(context.Background(), f.scope, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestQuestionSets_SearchDeleteExport(t *testing.T) {
	f := newFixture(t)
	f.ingest(t)
	ctx := context.Background()
	f.llm.replies = []string{"Question 1:\nName the energy currency of the cell.\nAnswer: ATP"}

	gen, err := f.svc.GenerateQuestions(ctx, GenerateRequest{Scope: f.scope, Type: question.OpenEnded, Topic: "Cellular respiration"})
	require.NoError(t, err)

	found, err := f.svc.SearchQuestionSets(ctx, f.scope, "RESPIRATION")
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = f.svc.SearchQuestionSets(ctx, f.scope, " ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportQuestionSet(ctx, "12", gen.Set.ID, &buf))
	var exported domain.QuestionSet
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	require.Len(t, exported.Questions, 1)
	oe := exported.Questions[0].(*question.OpenEndedQuestion)
	assert.Equal(t, "ATP", oe.Answer)

	assert.ErrorIs(t, f.svc.DeleteQuestionSet(ctx, "someone-else", gen.Set.ID), domain.ErrNotFound)
	require.NoError(t, f.svc.DeleteQuestionSet(ctx, "12", gen.Set.ID))
	_, err = f.svc.QuestionSet(ctx, "12", gen.Set.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUnits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateUnit(ctx, "12", "  ")
	assert.Error(t, err)

	units, err := f.svc.ListUnits(ctx, "12")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Biology", units[0].Title)

	_, err = f.svc.Unit(ctx, domain.Scope{UserID: "12", UnitID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOverlapOchiai(t *testing.T) {
	q := toTokenSet("cell energy")
	assert.InDelta(t, 1.0, overlapOchiai(q, "Energy, cell!"), 1e-9)
	assert.InDelta(t, 0.5, overlapOchiai(q, "cell wall"), 1e-9)
	assert.Zero(t, overlapOchiai(q, ""))
	assert.Zero(t, overlapOchiai(toTokenSet(""), "cell"))
}

func TestCollaboratorError(t *testing.T) {
	cause := errors.New("boom")
	err := collabErr(CollaboratorStore, "save", cause)
	assert.Equal(t, "store: save: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}
