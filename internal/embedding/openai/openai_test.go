package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic", req["model"])
		if req["input"] == "ollama" {
			_, _ = w.Write([]byte(`{"embedding":[0.5,0.5,0]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"embedding":[1,0,0]}]}`))
	}))
	defer srv.Close()

	t.Setenv("QB_EMBED_KEY", "k")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "QB_EMBED_KEY", Model: "nomic"})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Dimension())

	v, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, v)
	assert.Equal(t, 3, c.Dimension())

	v, err = c.Embed(context.Background(), "ollama")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, 0}, v)
}

func TestDecodeEmbedding_Empty(t *testing.T) {
	_, err := decodeEmbedding([]byte(`{"data":[]}`))
	assert.Error(t, err)
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("QB_EMBED_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "QB_EMBED_KEY"})
	assert.Error(t, err)
}
