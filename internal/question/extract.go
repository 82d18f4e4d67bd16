package question

import (
	"regexp"
	"strings"
)

var delimiterRe = regexp.MustCompile(`(?im)^[ \t]*question[ \t]*\d+[ \t]*:.*$`)

// Report describes what happened to the blocks of one extraction call.
type Report struct {
	Blocks  int       // non-empty blocks found in the input
	Dropped []Dropped // blocks that could not be parsed, in input order
}

// Dropped identifies a block that produced no record.
type Dropped struct {
	Block  int    // 1-based position among non-empty blocks
	Reason string
	Text   string
}

// Parsed is the number of blocks that produced a record.
func (r Report) Parsed() int { return r.Blocks - len(r.Dropped) }

// Extract converts raw generated text into structured questions of type t.
// It never fails: blocks that cannot be parsed are left out and ids stay consecutive.
func Extract(raw string, t Type) []Question {
	qs, _ := ExtractWithReport(raw, t)
	return qs
}

// ExtractWithReport is Extract plus a report of the dropped blocks.
func ExtractWithReport(raw string, t Type) ([]Question, Report) {
	var (
		out    []Question
		report Report
	)
	parse := parserFor(t)
	for _, block := range Split(raw) {
		report.Blocks++
		if parse == nil {
			report.Dropped = append(report.Dropped, Dropped{Block: report.Blocks, Reason: "unknown question type", Text: block})
			continue
		}
		q, reason := parse(block, len(out)+1)
		if q == nil {
			report.Dropped = append(report.Dropped, Dropped{Block: report.Blocks, Reason: reason, Text: block})
			continue
		}
		out = append(out, q)
	}
	return out, report
}

// Split cuts raw text into trimmed, non-empty question blocks.
// Each block starts on the line after a "Question N:" delimiter; whatever follows
// the colon on the delimiter line is discarded, as is any preamble before the
// first delimiter. Text without any delimiter is a single block.
func Split(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	locs := delimiterRe.FindAllStringIndex(raw, -1)
	var parts []string
	if len(locs) == 0 {
		parts = []string{raw}
	} else {
		for i, loc := range locs {
			end := len(raw)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			parts = append(parts, raw[loc[1]:end])
		}
	}

	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			blocks = append(blocks, p)
		}
	}
	return blocks
}

type blockParser func(block string, id int) (Question, string)

func parserFor(t Type) blockParser {
	switch t {
	case MultipleChoice:
		return parseMultipleChoice
	case TrueFalse:
		return parseTrueFalse
	case OpenEnded:
		return parseOpenEnded
	}
	return nil
}

func nonEmptyLines(block string) []string {
	raw := strings.Split(block, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
