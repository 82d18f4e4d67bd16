package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"questionbank/internal/question"
)

// UnmarshalJSON decodes the questions according to the set's type.
func (s *QuestionSet) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        uuid.UUID       `json:"id"`
		UserID    string          `json:"user_id"`
		UnitID    uuid.UUID       `json:"unit_id"`
		Topic     string          `json:"topic"`
		Type      question.Type   `json:"type"`
		Questions json.RawMessage `json:"questions"`
		CreatedAt time.Time       `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = QuestionSet{
		ID:        raw.ID,
		UserID:    raw.UserID,
		UnitID:    raw.UnitID,
		Topic:     raw.Topic,
		Type:      raw.Type,
		CreatedAt: raw.CreatedAt,
	}
	if len(raw.Questions) == 0 || string(raw.Questions) == "null" {
		return nil
	}
	qs, err := question.Decode(raw.Type, raw.Questions)
	if err != nil {
		return err
	}
	s.Questions = qs
	return nil
}

// Scope returns the scope the set belongs to.
func (s QuestionSet) Scope() Scope { return Scope{UserID: s.UserID, UnitID: s.UnitID} }

// MatchesTopic reports whether the set's topic contains term, ignoring case.
func (s QuestionSet) MatchesTopic(term string) bool {
	return strings.Contains(strings.ToLower(s.Topic), strings.ToLower(strings.TrimSpace(term)))
}
