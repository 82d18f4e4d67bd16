// Package prompt builds the chat messages sent to the completion model.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"questionbank/internal/domain"
	"questionbank/internal/question"
	"questionbank/internal/ranker"
)

const (
	generationSystem = "You are a tutor generating exam questions from lecture notes."
	answerSystem     = "You are a helpful assistant that answers questions from documents."
)

// Generation describes one question generation request.
type Generation struct {
	Type    question.Type
	Count   int
	Topic   string
	Context string
	Style   string // optional example question whose style should be matched
}

// Messages returns the system and user messages for the request.
func (g Generation) Messages() []domain.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following lecture content, generate %d exam-style %s questions that test understanding of ", g.Count, g.Type)
	if g.Topic != "" {
		fmt.Fprintf(&b, "the topic %q.", g.Topic)
	} else {
		b.WriteString("the material.")
	}
	if g.Style != "" {
		fmt.Fprintf(&b, " Match the style of the following example question:\n%s\n", g.Style)
	}
	b.WriteString("\n\n")
	b.WriteString(formatInstructions(g.Type))
	b.WriteString("\n\nLecture Notes:\n")
	b.WriteString(g.Context)
	b.WriteString("\n\nQuestions:")
	return []domain.Message{
		{Role: "system", Content: generationSystem},
		{Role: "user", Content: b.String()},
	}
}

// formatInstructions describes the layout the extractor understands for t.
func formatInstructions(t question.Type) string {
	const header = "Start every question with a line of the form \"Question N:\" and put the question text on the next line."
	switch t {
	case question.MultipleChoice:
		return header + ` List four options on separate lines as "A) ...", "B) ...", "C) ...", "D) ...", then finish with a line "Answer: X)" naming the correct letter.

Example:
Question 1:
What is the powerhouse of the cell?
A) Nucleus
B) Mitochondria
C) Ribosome
D) Golgi apparatus
Answer: B)`
	case question.TrueFalse:
		return header + ` Each question is a single statement. Finish with a line "Answer: True" or "Answer: False".

Example:
Question 1:
The mitochondria is the powerhouse of the cell.
Answer: True`
	default:
		return header + ` Finish with a line "Answer:" followed by a short model answer.

Example:
Question 1:
Explain why the mitochondria is called the powerhouse of the cell.
Answer: It produces most of the cell's ATP through cellular respiration.`
	}
}

// Answer describes a question asked against the lecture material.
type Answer struct {
	Question string
	Context  string
	History  []ranker.RankedExchange
}

// Messages returns the system and user messages for the question. Relevant
// history is placed before the retrieved context, most similar first.
func (a Answer) Messages() []domain.Message {
	var b strings.Builder
	if len(a.History) > 0 {
		b.WriteString("Previously asked questions that may be relevant:\n\n")
		for _, h := range a.History {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", h.Question, h.Answer)
		}
	}
	b.WriteString("Answer the question based on the following context:\n\n")
	b.WriteString(a.Context)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(a.Question)
	return []domain.Message{
		{Role: "system", Content: answerSystem},
		{Role: "user", Content: b.String()},
	}
}

// JoinContext joins retrieved passages with blank lines and cuts the result to
// at most maxChars characters. maxChars <= 0 means no limit.
func JoinContext(passages []string, maxChars int) string {
	joined := strings.Join(passages, "\n\n")
	return Truncate(joined, maxChars)
}

// Truncate returns the first maxChars characters of s.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
