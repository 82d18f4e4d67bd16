// Package textutil holds the tokenizing helpers shared by the chunker, the
// TF-IDF embedder and the summarizer.
package textutil

import (
	"regexp"
	"strings"
)

var (
	wordRe     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
	sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword reports whether the lower-cased token carries no topical meaning.
func IsStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}

// Words returns the lower-cased word tokens of text.
func Words(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// Terms returns the lower-cased word tokens of text without stopwords.
func Terms(text string) []string {
	raw := Words(text)
	out := raw[:0]
	for _, t := range raw {
		if !IsStopword(t) {
			out = append(out, t)
		}
	}
	return out
}

// Sentences splits text into trimmed sentences. Trailing text without a
// terminator is kept as a final sentence.
func Sentences(text string) []string {
	locs := sentenceRe.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(locs)+1)
	last := 0
	for _, loc := range locs {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		out = append(out, tail)
	}
	return out
}
