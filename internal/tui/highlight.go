package tui

import (
	"strings"

	"questionbank/internal/textutil"
)

// highlightBestSentence renders text with the sentence sharing the most words
// with query highlighted.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := textutil.Sentences(text)
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 || len(sentences) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestScore == 0 {
		return strings.Join(sentences, " ")
	}
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := textutil.Terms(s)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	for t := range toTokenSet(sentence) {
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
