package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoQuestions means the model replied but no block could be parsed into a question.
	ErrNoQuestions = errors.New("no usable questions extracted")
	// ErrEmptyQuery is returned for blank questions and topics.
	ErrEmptyQuery = errors.New("empty query")
	// ErrNoDocuments is returned when ingestion finds no .txt files.
	ErrNoDocuments = errors.New("no .txt documents found")
	// ErrNoContext means the unit has no ingested material to generate from.
	ErrNoContext = errors.New("unit has no ingested material")
)

// Collaborator names used in CollaboratorError.
const (
	CollaboratorLLM         = "llm"
	CollaboratorEmbedder    = "embedder"
	CollaboratorVectorStore = "vector store"
	CollaboratorStore       = "store"
)

// CollaboratorError reports a failure of an external dependency, as opposed
// to a problem with the content it returned.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func collabErr(collaborator, op string, err error) error {
	return &CollaboratorError{Collaborator: collaborator, Op: op, Err: err}
}
