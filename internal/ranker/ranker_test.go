package ranker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_Example(t *testing.T) {
	corpus := []Exchange{
		{Question: "q1", Answer: "a1", Embedding: []float64{1, 0}},
		{Question: "q2", Answer: "a2", Embedding: []float64{0, 1}},
		{Question: "q3", Answer: "a3", Embedding: []float64{0.7, 0.7}},
	}
	got := Rank([]float64{1, 0}, corpus, 2)
	require.Len(t, got, 2)

	assert.Equal(t, "q1", got[0].Question)
	assert.Equal(t, "a1", got[0].Answer)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)

	assert.Equal(t, "q3", got[1].Question)
	assert.Equal(t, "a3", got[1].Answer)
	assert.InDelta(t, math.Sqrt2/2, got[1].Score, 1e-9)
}

func TestRank_EmptyCorpus(t *testing.T) {
	for _, k := range []int{0, 1, 5, 100} {
		got := Rank([]float64{1, 2, 3}, nil, k)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestRank_IsStable(t *testing.T) {
	corpus := []Exchange{
		{Question: "low", Embedding: []float64{0, 1}},
		{Question: "tie-a", Embedding: []float64{2, 0}},
		{Question: "tie-b", Embedding: []float64{1, 0}},
		{Question: "zero", Embedding: []float64{0, 0}},
		{Question: "tie-c", Embedding: []float64{5, 0}},
	}
	got := Rank([]float64{3, 0}, corpus, 10)
	require.Len(t, got, 5)
	names := make([]string, len(got))
	for i, r := range got {
		names[i] = r.Question
	}
	assert.Equal(t, []string{"tie-a", "tie-b", "tie-c", "low", "zero"}, names)
}

func TestRank_TopK(t *testing.T) {
	corpus := make([]Exchange, 8)
	for i := range corpus {
		corpus[i] = Exchange{Question: string(rune('a' + i)), Embedding: []float64{float64(i), 1}}
	}
	assert.Len(t, Rank([]float64{1, 0}, corpus, 3), 3)
	assert.Len(t, Rank([]float64{1, 0}, corpus, -1), DefaultTopK)
	assert.Empty(t, Rank([]float64{1, 0}, corpus, 0))
	assert.Len(t, Rank([]float64{1, 0}, corpus[:2], 5), 2)

	top := Rank([]float64{1, 0}, corpus, 1)
	assert.Equal(t, "h", top[0].Question)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"scaled", []float64{1, 1}, []float64{10, 10}, 1},
		{"zero query", []float64{0, 0}, []float64{1, 1}, 0},
		{"zero corpus", []float64{1, 1}, []float64{0, 0}, 0},
		{"both empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRank_ScoresWithinRange(t *testing.T) {
	corpus := []Exchange{
		{Embedding: []float64{-3, 4}},
		{Embedding: []float64{0.1, -0.2}},
		{Embedding: []float64{7, 7}},
	}
	for _, r := range Rank([]float64{1, -1}, corpus, -1) {
		assert.GreaterOrEqual(t, r.Score, -1.0-1e-12)
		assert.LessOrEqual(t, r.Score, 1.0+1e-12)
	}
}

func TestRank_MismatchedDimensionsDoNotFail(t *testing.T) {
	corpus := []Exchange{
		{Question: "short", Embedding: []float64{1}},
		{Question: "same", Embedding: []float64{1, 0}},
		{Question: "long", Embedding: []float64{1, 0, 5}},
	}
	ranked := Rank([]float64{1, 0}, corpus, -1)
	require.Len(t, ranked, 3)
	for _, r := range ranked {
		assert.False(t, math.IsNaN(r.Score))
		assert.LessOrEqual(t, r.Score, 1.0+1e-12)
	}
	assert.Equal(t, "short", ranked[0].Question, "equal scores keep corpus order")
	assert.InDelta(t, 1.0, ranked[1].Score, 1e-9)
	assert.Less(t, ranked[2].Score, 1.0)
}
