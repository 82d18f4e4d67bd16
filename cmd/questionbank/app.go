package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"questionbank/internal/chunker"
	"questionbank/internal/config"
	"questionbank/internal/domain"
	"questionbank/internal/embedding"
	"questionbank/internal/embedding/openai"
	"questionbank/internal/embedding/tfidf"
	llmopenai "questionbank/internal/llm/openai"
	"questionbank/internal/logger"
	"questionbank/internal/service"
	"questionbank/internal/store/memory"
	"questionbank/internal/store/postgres"
	"questionbank/internal/summarizer"
	"questionbank/internal/vectorstore"
	vsmemory "questionbank/internal/vectorstore/memory"
	"questionbank/internal/vectorstore/qdrant"
)

// app holds the assembled components for one command invocation.
type app struct {
	cfg   *config.AppConfig
	log   *zap.Logger
	svc   *service.Service
	store domain.Store
	user  string
}

// openApp loads configuration and assembles the service. Model clients are
// only built when withModels is set, so commands that just read stored data
// work without API keys.
func openApp(ctx context.Context, withModels bool) (*app, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	// Assemble components
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := service.Deps{
		Chunker:    chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences, cfg.Chunker.MaxChars),
		Summarizer: summarizer.NewFrequencySummarizer(),
		Vectors:    newVectorStore(cfg),
		Store:      store,
	}
	if withModels {
		emb, err := newEmbedder(cfg)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		deps.Embedder, err = embedding.NewCached(emb, cfg.History.EmbedCacheSize)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		deps.Completer, err = llmopenai.NewChat(llmopenai.Config{
			BaseURL:           cfg.LLM.BaseURL,
			APIKeyEnv:         cfg.LLM.APIKeyEnv,
			Model:             cfg.LLM.Model,
			Temperature:       cfg.LLM.Temperature,
			MaxTokens:         cfg.LLM.MaxTokens,
			Timeout:           time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
			RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("llm init failed: %w", err)
		}
	}

	svc := service.New(deps, service.Options{
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
		QuestionCount:       cfg.Generation.QuestionCount,
		ContextChars:        cfg.Generation.ContextChars,
		RetrieveTopK:        cfg.Generation.RetrieveTopK,
		HistoryTopK:         cfg.History.TopK,
		IngestConcurrency:   cfg.Ingest.Concurrency,
	}, log)

	user := cfg.UserID
	if userID != "" {
		user = userID
	}
	return &app{cfg: cfg, log: log, svc: svc, store: store, user: user}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
	_ = a.log.Sync()
}

// scope resolves the --unit flag for the current user.
func (a *app) scope() (domain.Scope, error) {
	if strings.TrimSpace(unitArg) == "" {
		return domain.Scope{}, errors.New("--unit is required")
	}
	id, err := uuid.Parse(unitArg)
	if err != nil {
		return domain.Scope{}, fmt.Errorf("invalid unit id %q: %w", unitArg, err)
	}
	return domain.Scope{UserID: a.user, UnitID: id}, nil
}

func newEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		client, err := openai.NewClient(openai.Config{
			BaseURL:           cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:         cfg.Embedder.OpenAI.APIKeyEnv,
			Model:             cfg.Embedder.OpenAI.Model,
			Timeout:           time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			RequestsPerMinute: cfg.Embedder.OpenAI.RequestsPerMinute,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
}

func newVectorStore(cfg *config.AppConfig) vectorstore.Storage {
	if cfg.VectorStore.Type == "qdrant" {
		q := cfg.VectorStore.Qdrant
		return qdrant.NewStorage(qdrant.Config{
			URL:              q.URL,
			APIKey:           os.Getenv(q.APIKeyEnv),
			CollectionPrefix: q.CollectionPrefix,
			Timeout:          time.Duration(q.TimeoutSecs) * time.Second,
		})
	}
	return vsmemory.NewStorage()
}

func newStore(ctx context.Context, cfg *config.AppConfig) (domain.Store, error) {
	if cfg.Store.Type != "postgres" {
		return memory.New(), nil
	}
	pg := cfg.Store.Postgres
	dsn := os.Getenv(pg.DSNEnv)
	if dsn == "" {
		return nil, fmt.Errorf("%s environment variable is required", pg.DSNEnv)
	}
	s, err := postgres.Open(ctx, dsn, postgres.PoolConfig{MaxConns: pg.MaxConns})
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return s, nil
}
