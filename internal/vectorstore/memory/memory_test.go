package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionbank/internal/domain"
	"questionbank/internal/vectorstore"
)

func chunk(id string) domain.Chunk { return domain.Chunk{ChunkID: id, Text: "text " + id} }

func TestStorage_SearchIsScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, "u/1", 2))
	require.NoError(t, s.Init(ctx, "u/2", 2))

	require.NoError(t, s.Upsert(ctx, "u/1",
		[]domain.Chunk{chunk("a"), chunk("b"), chunk("c")},
		[][]float64{{0, 1}, {1, 0}, {1, 1}}))
	require.NoError(t, s.Upsert(ctx, "u/2", []domain.Chunk{chunk("z")}, [][]float64{{1, 0}}))

	res, err := s.Search(ctx, "u/1", []float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b", res[0].Chunk.ChunkID)
	assert.Equal(t, "c", res[1].Chunk.ChunkID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)

	res, err = s.Search(ctx, "u/2", []float64{1, 0}, 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "z", res[0].Chunk.ChunkID)

	res, err = s.Search(ctx, "missing", []float64{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestStorage_UpsertReplacesByChunkID(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, "ns", 1))
	require.NoError(t, s.Upsert(ctx, "ns", []domain.Chunk{chunk("a")}, [][]float64{{1}}))
	require.NoError(t, s.Upsert(ctx, "ns", []domain.Chunk{{ChunkID: "a", Text: "new"}}, [][]float64{{-1}}))

	res, err := s.Search(ctx, "ns", []float64{1}, 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "new", res[0].Chunk.Text)
	assert.InDelta(t, -1.0, res[0].Score, 1e-9)
	n, err := s.Count(ctx, "ns")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Clear(ctx, "ns"))
	res, err = s.Search(ctx, "ns", []float64{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
	n, err = s.Count(ctx, "ns")
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = s.Count(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStorage_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	assert.Error(t, s.Init(ctx, "ns", 0))
	assert.ErrorIs(t, s.Upsert(ctx, "ns", []domain.Chunk{chunk("a")}, [][]float64{{1}}), vectorstore.ErrNotInitialized)

	require.NoError(t, s.Init(ctx, "ns", 2))
	assert.Error(t, s.Upsert(ctx, "ns", []domain.Chunk{chunk("a")}, nil))
	assert.Error(t, s.Upsert(ctx, "ns", []domain.Chunk{chunk("a")}, [][]float64{{1}}))
}
