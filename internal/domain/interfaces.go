package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"questionbank/internal/question"
)

// ErrNotFound is returned by stores when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Scope identifies the owner of indexed lecture material, question sets and history.
type Scope struct {
	UserID string
	UnitID uuid.UUID
}

// Namespace is the key under which the scope's vectors are stored.
func (s Scope) Namespace() string {
	return s.UserID + "/" + s.UnitID.String()
}

// Unit groups the lecture material of one course or topic for a user.
type Unit struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Scope returns the scope of everything stored under this unit.
func (u Unit) Scope() Scope { return Scope{UserID: u.UserID, UnitID: u.ID} }

// Document represents a single text file loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a semantically meaningful part of a document used for indexing.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// QuestionSet is the persisted result of one generation request.
type QuestionSet struct {
	ID        uuid.UUID           `json:"id"`
	UserID    string              `json:"user_id"`
	UnitID    uuid.UUID           `json:"unit_id"`
	Topic     string              `json:"topic"`
	Type      question.Type       `json:"type"`
	Questions []question.Question `json:"questions"`
	CreatedAt time.Time           `json:"created_at"`
}

// Exchange is a past question asked by the user together with the answer given.
type Exchange struct {
	ID        uuid.UUID
	UserID    string
	UnitID    uuid.UUID
	Question  string
	Answer    string
	Embedding []float64
	CreatedAt time.Time
}

// Message is one chat turn sent to a completion model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Completer returns the model's reply to a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Store persists units, question sets and question/answer history.
type Store interface {
	CreateUnit(ctx context.Context, unit Unit) error
	GetUnit(ctx context.Context, id uuid.UUID) (Unit, error)
	ListUnits(ctx context.Context, userID string) ([]Unit, error)
	UpdateUnitSummary(ctx context.Context, id uuid.UUID, summary string) error

	// ReplaceChunks stores the chunks of the scope's latest ingestion, dropping earlier ones.
	ReplaceChunks(ctx context.Context, scope Scope, chunks []Chunk) error
	ListChunks(ctx context.Context, scope Scope) ([]Chunk, error)

	SaveQuestionSet(ctx context.Context, set QuestionSet) error
	GetQuestionSet(ctx context.Context, id uuid.UUID) (QuestionSet, error)
	ListQuestionSets(ctx context.Context, scope Scope) ([]QuestionSet, error)
	SearchQuestionSets(ctx context.Context, scope Scope, topic string) ([]QuestionSet, error)
	DeleteQuestionSet(ctx context.Context, id uuid.UUID) error

	AppendExchange(ctx context.Context, ex Exchange) error
	ListExchanges(ctx context.Context, scope Scope) ([]Exchange, error)

	Close() error
}
