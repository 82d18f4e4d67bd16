package question

import (
	"regexp"
	"strings"
)

var (
	optionRe       = regexp.MustCompile(`^([A-Za-z])[).] (.*)$`)
	answerLineRe   = regexp.MustCompile(`(?i)^answer`)
	answerLetterRe = regexp.MustCompile(`[A-D]\)`)
)

// parseMultipleChoice reads the question from the first line, options from
// "A) ..." / "b. ..." lines and the correct letter from the "Answer" line.
// Without a usable answer the first option is taken as correct. The first line
// is the question even when it looks like an option; only a block opening on
// its answer line has no question to keep.
func parseMultipleChoice(block string, id int) (Question, string) {
	lines := nonEmptyLines(block)
	if len(lines) == 0 {
		return nil, "empty block"
	}
	text := lines[0]
	if answerSepRe.MatchString(text) {
		return nil, "missing question text"
	}

	options := []string{}
	letter := -1
	for _, line := range lines[1:] {
		if m := optionRe.FindStringSubmatch(line); m != nil {
			options = append(options, strings.TrimSpace(m[2]))
			continue
		}
		if answerLineRe.MatchString(line) && letter < 0 {
			if m := answerLetterRe.FindString(line); m != "" {
				letter = int(m[0] - 'A')
			}
		}
	}

	q := &MultipleChoiceQuestion{Number: id, Text: text, Options: options}
	if len(options) > 0 {
		answer := options[0]
		if letter >= 0 && letter < len(options) {
			answer = options[letter]
		}
		q.CorrectAnswer = &answer
	}
	return q, ""
}
