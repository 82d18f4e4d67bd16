// Package ranker orders past question/answer exchanges by how similar their
// embeddings are to a query embedding.
package ranker

import (
	"math"
	"sort"
)

// DefaultTopK is the number of exchanges spliced into a prompt when the caller
// does not ask for a specific number.
const DefaultTopK = 5

// Exchange is a past question with its answer and the embedding of the question.
type Exchange struct {
	Question  string
	Answer    string
	Embedding []float64
}

// RankedExchange is an exchange scored against a query.
type RankedExchange struct {
	Question string
	Answer   string
	Score    float64
}

// Rank returns at most k exchanges ordered by cosine similarity to query, most
// similar first. Equal scores keep their corpus order. k == 0 yields nothing and
// a negative k means DefaultTopK.
//
// Vectors are expected to share one dimensionality. Rank does not fail on a
// mismatch, but the score of such a pair is not meaningful: the dot product
// covers the common prefix while each norm covers its whole vector. Callers
// filter out embeddings from another vector space.
func Rank(query []float64, corpus []Exchange, k int) []RankedExchange {
	if k < 0 {
		k = DefaultTopK
	}
	if k == 0 || len(corpus) == 0 {
		return []RankedExchange{}
	}

	qnorm := norm(query)
	ranked := make([]RankedExchange, len(corpus))
	for i, ex := range corpus {
		ranked[i] = RankedExchange{
			Question: ex.Question,
			Answer:   ex.Answer,
			Score:    cosine(query, qnorm, ex.Embedding),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

// CosineSimilarity is the dot product of a and b divided by the product of
// their Euclidean norms, or 0 when either norm is zero.
func CosineSimilarity(a, b []float64) float64 {
	return cosine(a, norm(a), b)
}

func cosine(a []float64, anorm float64, b []float64) float64 {
	bnorm := norm(b)
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	return dot(a, b) / (anorm * bnorm)
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
