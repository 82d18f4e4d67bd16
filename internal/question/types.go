package question

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type selects the sub-parser and the record shape for a block of generated text.
type Type string

const (
	MultipleChoice Type = "multiple-choice"
	TrueFalse      Type = "true-false"
	OpenEnded      Type = "open-ended"
)

// Types lists every supported question type in display order.
var Types = []Type{MultipleChoice, TrueFalse, OpenEnded}

// ParseType maps a user supplied name onto a Type. Underscores and case are ignored.
func ParseType(s string) (Type, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, t := range Types {
		if string(t) == norm {
			return t, nil
		}
	}
	switch norm {
	case "mc", "mcq":
		return MultipleChoice, nil
	case "tf":
		return TrueFalse, nil
	case "open", "oe":
		return OpenEnded, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

func (t Type) String() string { return string(t) }

// Question is a structured record produced from one block of generated text.
type Question interface {
	ID() int
	Type() Type
	Prompt() string
}

// Truth is a ternary answer: true, false or undetermined.
// The zero value is Undetermined.
type Truth int

const (
	Undetermined Truth = iota
	True
	False
)

// TruthOf converts a bool into a determined Truth.
func TruthOf(b bool) Truth {
	if b {
		return True
	}
	return False
}

// Bool returns the answer and whether it is determined.
func (t Truth) Bool() (value bool, ok bool) {
	switch t {
	case True:
		return true, true
	case False:
		return false, true
	}
	return false, false
}

func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "undetermined"
}

// MarshalJSON encodes an undetermined answer as null.
func (t Truth) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

func (t *Truth) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*t = Undetermined
		return nil
	}
	*t = TruthOf(*v)
	return nil
}

// TrueFalseOptions are the presentation options of every true/false question.
var TrueFalseOptions = []string{"True", "False"}

// MultipleChoiceQuestion is a question with ordered options.
// CorrectAnswer holds option text, not a letter; nil when nothing could be determined.
type MultipleChoiceQuestion struct {
	Number        int      `json:"id"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *string  `json:"correctAnswer"`
}

func (q *MultipleChoiceQuestion) ID() int        { return q.Number }
func (q *MultipleChoiceQuestion) Type() Type     { return MultipleChoice }
func (q *MultipleChoiceQuestion) Prompt() string { return q.Text }

// TrueFalseQuestion is a statement to be judged true or false.
type TrueFalseQuestion struct {
	Number        int      `json:"id"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer Truth    `json:"correctAnswer"`
}

func (q *TrueFalseQuestion) ID() int        { return q.Number }
func (q *TrueFalseQuestion) Type() Type     { return TrueFalse }
func (q *TrueFalseQuestion) Prompt() string { return q.Text }

// OpenEndedQuestion carries a free-text model answer, possibly empty.
type OpenEndedQuestion struct {
	Number int    `json:"id"`
	Text   string `json:"question"`
	Answer string `json:"answer"`
}

func (q *OpenEndedQuestion) ID() int        { return q.Number }
func (q *OpenEndedQuestion) Type() Type     { return OpenEnded }
func (q *OpenEndedQuestion) Prompt() string { return q.Text }

// Decode restores questions of type t from their JSON array encoding.
func Decode(t Type, data []byte) ([]Question, error) {
	var out []Question
	switch t {
	case MultipleChoice:
		var qs []*MultipleChoiceQuestion
		if err := json.Unmarshal(data, &qs); err != nil {
			return nil, fmt.Errorf("decode %s questions: %w", t, err)
		}
		for _, q := range qs {
			out = append(out, q)
		}
	case TrueFalse:
		var qs []*TrueFalseQuestion
		if err := json.Unmarshal(data, &qs); err != nil {
			return nil, fmt.Errorf("decode %s questions: %w", t, err)
		}
		for _, q := range qs {
			if len(q.Options) == 0 {
				q.Options = append([]string(nil), TrueFalseOptions...)
			}
			out = append(out, q)
		}
	case OpenEnded:
		var qs []*OpenEndedQuestion
		if err := json.Unmarshal(data, &qs); err != nil {
			return nil, fmt.Errorf("decode %s questions: %w", t, err)
		}
		for _, q := range qs {
			out = append(out, q)
		}
	default:
		return nil, fmt.Errorf("unknown question type %q", t)
	}
	return out, nil
}
