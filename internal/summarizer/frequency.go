package summarizer

import (
	"math"
	"sort"
	"strings"

	"questionbank/internal/textutil"
)

// FrequencySummarizer ranks sentences by normalized term frequency and keeps
// the best ones in their original order. It is used to describe a unit after
// ingestion and to seed question generation when no topic is given.
type FrequencySummarizer struct{}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer { return &FrequencySummarizer{} }

// Summarize returns at most maxSentences sentences of text (5 when maxSentences <= 0).
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := textutil.Sentences(text)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	terms := make([][]string, len(sentences))
	freq := map[string]float64{}
	maxF := 0.0
	for i, sent := range sentences {
		terms[i] = textutil.Terms(sent)
		for _, tok := range terms[i] {
			freq[tok]++
			maxF = math.Max(maxF, freq[tok])
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i := range sentences {
		total := 0.0
		for _, tok := range terms[i] {
			total += freq[tok] / maxF
		}
		// long sentences should not win on length alone
		if n := len(textutil.Words(sentences[i])); n > 0 {
			total /= math.Sqrt(float64(n))
		}
		scores[i] = scored{i, total}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " "), nil
}
