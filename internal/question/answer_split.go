package question

import (
	"regexp"
	"strings"
)

var answerSepRe = regexp.MustCompile(`(?im)^[ \t]*answer[ \t]*:`)

// splitAnswer separates a block at its first "Answer:" line.
// found is false when the block has no such line.
func splitAnswer(block string) (q, answer string, found bool) {
	loc := answerSepRe.FindStringIndex(block)
	if loc == nil {
		return strings.TrimSpace(block), "", false
	}
	return strings.TrimSpace(block[:loc[0]]), strings.TrimSpace(block[loc[1]:]), true
}

func parseTrueFalse(block string, id int) (Question, string) {
	text, answer, found := splitAnswer(block)
	if text == "" {
		return nil, "missing question text"
	}
	q := &TrueFalseQuestion{
		Number:  id,
		Text:    text,
		Options: append([]string(nil), TrueFalseOptions...),
	}
	if found {
		switch {
		case strings.EqualFold(answer, "true"):
			q.CorrectAnswer = True
		case strings.EqualFold(answer, "false"):
			q.CorrectAnswer = False
		}
	}
	return q, ""
}

func parseOpenEnded(block string, id int) (Question, string) {
	text, answer, _ := splitAnswer(block)
	if text == "" {
		return nil, "missing question text"
	}
	return &OpenEndedQuestion{Number: id, Text: text, Answer: answer}, ""
}
