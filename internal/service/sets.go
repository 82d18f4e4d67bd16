package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"questionbank/internal/domain"
)

func (s *Service) ListQuestionSets(ctx context.Context, scope domain.Scope) ([]domain.QuestionSet, error) {
	sets, err := s.store.ListQuestionSets(ctx, scope)
	if err != nil {
		return nil, collabErr(CollaboratorStore, "list question sets", err)
	}
	return sets, nil
}

// SearchQuestionSets returns the scope's sets whose topic contains term, ignoring case.
func (s *Service) SearchQuestionSets(ctx context.Context, scope domain.Scope, term string) ([]domain.QuestionSet, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptyQuery
	}
	sets, err := s.store.SearchQuestionSets(ctx, scope, term)
	if err != nil {
		return nil, collabErr(CollaboratorStore, "search question sets", err)
	}
	return sets, nil
}

// QuestionSet returns the set with id when it belongs to userID.
func (s *Service) QuestionSet(ctx context.Context, userID string, id uuid.UUID) (domain.QuestionSet, error) {
	set, err := s.store.GetQuestionSet(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.QuestionSet{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.QuestionSet{}, collabErr(CollaboratorStore, "get question set", err)
	}
	if set.UserID != userID {
		return domain.QuestionSet{}, domain.ErrNotFound
	}
	return set, nil
}

func (s *Service) DeleteQuestionSet(ctx context.Context, userID string, id uuid.UUID) error {
	if _, err := s.QuestionSet(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteQuestionSet(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return collabErr(CollaboratorStore, "delete question set", err)
	}
	return nil
}

// ExportQuestionSet writes the set as indented JSON.
func (s *Service) ExportQuestionSet(ctx context.Context, userID string, id uuid.UUID, w io.Writer) error {
	set, err := s.QuestionSet(ctx, userID, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("export question set: %w", err)
	}
	return nil
}
