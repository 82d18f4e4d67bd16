package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionbank/internal/domain"
)

func texts(chunks []domain.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func TestSentenceChunker_Overlap(t *testing.T) {
	c := NewSentenceChunker(2, 1, 0)
	chunks, err := c.Chunk(domain.Document{ID: "doc", Content: "One. Two. Three. Four. Five."})
	require.NoError(t, err)
	assert.Equal(t, []string{"One. Two.", "Two. Three.", "Three. Four.", "Four. Five."}, texts(chunks))
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, "doc", ch.DocumentID)
	}
	assert.Equal(t, "doc:3", chunks[3].ChunkID)
}

func TestSentenceChunker_MaxChars(t *testing.T) {
	c := NewSentenceChunker(5, 0, 12)
	chunks, err := c.Chunk(domain.Document{ID: "d", Content: "aaaa. bbbb. cccc. dddddddddddddddddd."})
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa. bbbb.", "cccc.", "dddddddddddddddddd."}, texts(chunks))
}

func TestSentenceChunker_EdgeCases(t *testing.T) {
	c := NewSentenceChunker(0, 10, 0)
	chunks, err := c.Chunk(domain.Document{ID: "d", Content: "   "})
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = c.Chunk(domain.Document{ID: "d", Content: "no terminator at all"})
	require.NoError(t, err)
	assert.Equal(t, []string{"no terminator at all"}, texts(chunks))
}
