package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL           string `yaml:"base_url"`
	APIKeyEnv         string `yaml:"api_key_env"`
	Model             string `yaml:"model"`
	TimeoutSecs       int    `yaml:"timeout_secs"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
	MaxChars          int    `yaml:"max_chars"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL              string `yaml:"url"`
	APIKeyEnv        string `yaml:"api_key_env"`
	CollectionPrefix string `yaml:"collection_prefix"`
	TimeoutSecs      int    `yaml:"timeout_secs"`
}

// StoreConfig selects where units, question sets and history are kept.
type StoreConfig struct {
	Type     string          `yaml:"type"`
	Postgres *PostgresConfig `yaml:"postgres,omitempty"`
}

// PostgresConfig contains connection details for the PostgreSQL store.
type PostgresConfig struct {
	DSNEnv   string `yaml:"dsn_env"`
	MaxConns int32  `yaml:"max_conns"`
}

// LLMConfig configures the chat completion model used for generation and answers.
type LLMConfig struct {
	Type              string  `yaml:"type"`
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Model             string  `yaml:"model"`
	Temperature       float64 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// GenerationConfig tunes question generation.
type GenerationConfig struct {
	QuestionCount int `yaml:"question_count"`
	ContextChars  int `yaml:"context_chars"`
	RetrieveTopK  int `yaml:"retrieve_top_k"`
}

// HistoryConfig tunes how past exchanges are ranked for the ask command.
type HistoryConfig struct {
	TopK           int `yaml:"top_k"`
	EmbedCacheSize int `yaml:"embed_cache_size"`
}

// IngestConfig tunes document ingestion.
type IngestConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Encoding   string `yaml:"encoding"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	UserID      string            `yaml:"user_id"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Store       StoreConfig       `yaml:"store"`
	LLM         LLMConfig         `yaml:"llm"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Generation  GenerationConfig  `yaml:"generation"`
	History     HistoryConfig     `yaml:"history"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/questionbank/config.yaml.
// If neither exists, it writes defaults to ~/.config/questionbank/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects component types the application cannot build.
func (c *AppConfig) Validate() error {
	checks := []struct {
		section string
		value   string
		allowed []string
	}{
		{"embedder.type", c.Embedder.Type, []string{"tfidf", "openai"}},
		{"chunker.type", c.Chunker.Type, []string{"sentence"}},
		{"vector_store.type", c.VectorStore.Type, []string{"memory", "qdrant"}},
		{"store.type", c.Store.Type, []string{"memory", "postgres"}},
		{"llm.type", c.LLM.Type, []string{"openai"}},
		{"summarizer.type", c.Summarizer.Type, []string{"frequency"}},
		{"log.encoding", c.Log.Encoding, []string{"console", "json"}},
	}
	for _, ch := range checks {
		if !contains(ch.allowed, ch.value) {
			return fmt.Errorf("unknown %s %q", ch.section, ch.value)
		}
	}
	if c.VectorStore.Type == "qdrant" && (c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "") {
		return errors.New("vector_store.qdrant.url is required")
	}
	if c.Chunker.OverlapSentences >= c.Chunker.SentencesPerChunk {
		return errors.New("chunker.overlap_sentences must be smaller than sentences_per_chunk")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "questionbank", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		UserID:      "local",
		Embedder:    EmbedderConfig{Type: "tfidf"},
		Chunker:     ChunkerConfig{Type: "sentence", SentencesPerChunk: 5, OverlapSentences: 1, MaxChars: 1200},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Store:       StoreConfig{Type: "memory"},
		Summarizer:  SummarizerConfig{Type: "frequency", MaxSentences: 5},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.UserID == "" {
		cfg.UserID = "local"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}

	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "sentence"
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{URL: "http://localhost:6333"}
		}
		if cfg.VectorStore.Qdrant.CollectionPrefix == "" {
			cfg.VectorStore.Qdrant.CollectionPrefix = "lectures"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}

	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.Store.Type == "postgres" {
		if cfg.Store.Postgres == nil {
			cfg.Store.Postgres = &PostgresConfig{}
		}
		if cfg.Store.Postgres.DSNEnv == "" {
			cfg.Store.Postgres.DSNEnv = "QUESTIONBANK_DATABASE_URL"
		}
		if cfg.Store.Postgres.MaxConns == 0 {
			cfg.Store.Postgres.MaxConns = 10
		}
	}

	if cfg.LLM.Type == "" {
		cfg.LLM.Type = "openai"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.together.xyz/v1"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "TOGETHER_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "meta-llama/Llama-3-8b-chat-hf"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 512
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}

	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "frequency"
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 5
	}

	if cfg.Generation.QuestionCount == 0 {
		cfg.Generation.QuestionCount = 5
	}
	if cfg.Generation.ContextChars == 0 {
		cfg.Generation.ContextChars = 6000
	}
	if cfg.Generation.RetrieveTopK == 0 {
		cfg.Generation.RetrieveTopK = 8
	}

	if cfg.History.TopK == 0 {
		cfg.History.TopK = 5
	}
	if cfg.History.EmbedCacheSize == 0 {
		cfg.History.EmbedCacheSize = 512
	}

	if cfg.Ingest.Concurrency == 0 {
		cfg.Ingest.Concurrency = 4
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Encoding == "" {
		cfg.Log.Encoding = "console"
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 50
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 3
	}
}
