package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, 6000, cfg.Generation.ContextChars)
	assert.Equal(t, 5, cfg.History.TopK)
	assert.Equal(t, "meta-llama/Llama-3-8b-chat-hf", cfg.LLM.Model)
	assert.Equal(t, "TOGETHER_API_KEY", cfg.LLM.APIKeyEnv)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_AppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
embedder:
  type: openai
vector_store:
  type: qdrant
store:
  type: postgres
generation:
  question_count: 3
log:
  level: debug
  encoding: json
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	require.NotNil(t, cfg.VectorStore.Qdrant)
	assert.Equal(t, "http://localhost:6333", cfg.VectorStore.Qdrant.URL)
	assert.Equal(t, "lectures", cfg.VectorStore.Qdrant.CollectionPrefix)
	require.NotNil(t, cfg.Store.Postgres)
	assert.Equal(t, "QUESTIONBANK_DATABASE_URL", cfg.Store.Postgres.DSNEnv)
	assert.Equal(t, 3, cfg.Generation.QuestionCount)
	assert.Equal(t, 6000, cfg.Generation.ContextChars)
	assert.Equal(t, "json", cfg.Log.Encoding)
}

func TestLoad_RejectsUnknownTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder:\n  type: word2vec\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedder.type")
}

func TestValidate_ChunkerOverlap(t *testing.T) {
	cfg := defaultConfig()
	cfg.Chunker.OverlapSentences = cfg.Chunker.SentencesPerChunk
	assert.Error(t, cfg.Validate())
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.UserID = "12"
	cfg.History.TopK = 9
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
