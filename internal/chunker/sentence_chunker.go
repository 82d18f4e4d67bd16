package chunker

import (
	"strconv"
	"strings"

	"questionbank/internal/domain"
	"questionbank/internal/textutil"
)

// SentenceChunker groups lecture sentences into overlapping chunks. A chunk
// ends after sentencesPerChunk sentences or once it reaches maxChars, whichever
// comes first; a single overlong sentence still forms its own chunk.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	maxChars          int
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences, maxChars int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		maxChars:          maxChars,
	}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	sentences := textutil.Sentences(document.Content)
	if len(sentences) == 0 {
		return nil, nil
	}
	var chunks []domain.Chunk
	i := 0
	for i < len(sentences) {
		end := c.chunkEnd(sentences, i)
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Text:       strings.Join(sentences[i:end], " "),
			Index:      idx,
		})
		if end == len(sentences) {
			break
		}
		next := end - c.overlapSentences
		if next <= i {
			next = i + 1
		}
		i = next
	}
	return chunks, nil
}

func (c *SentenceChunker) chunkEnd(sentences []string, start int) int {
	end := start
	size := 0
	for end < len(sentences) && end-start < c.sentencesPerChunk {
		size += len(sentences[end]) + 1
		if c.maxChars > 0 && size > c.maxChars && end > start {
			break
		}
		end++
	}
	return end
}
