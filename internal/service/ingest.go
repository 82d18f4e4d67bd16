package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"questionbank/internal/domain"
)

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Documents int
	Chunks    int
	Summary   string
}

// IngestDocuments indexes the .txt files matched by paths into the scope's
// vector namespace, replacing whatever was indexed there before, and stores a
// summary of the material on the unit.
func (s *Service) IngestDocuments(ctx context.Context, scope domain.Scope, paths []string) (IngestResult, error) {
	if _, err := s.Unit(ctx, scope); err != nil {
		return IngestResult{}, err
	}
	documents, err := loadDocuments(paths)
	if err != nil {
		return IngestResult{}, err
	}

	var (
		allChunks []domain.Chunk
		fullText  strings.Builder
	)
	for _, d := range documents {
		chunks, err := s.chunker.Chunk(d)
		if err != nil {
			return IngestResult{}, fmt.Errorf("chunk %s: %w", d.Path, err)
		}
		allChunks = append(allChunks, chunks...)
		fullText.WriteString("\n")
		fullText.WriteString(d.Content)
	}
	if len(allChunks) == 0 {
		return IngestResult{}, ErrNoDocuments
	}

	ns := scope.Namespace()
	if err := s.index(ctx, ns, allChunks, true); err != nil {
		return IngestResult{}, err
	}
	if err := s.store.ReplaceChunks(ctx, scope, allChunks); err != nil {
		return IngestResult{}, collabErr(CollaboratorStore, "replace chunks", err)
	}

	summary, err := s.summarizer.Summarize(fullText.String(), s.opts.SummaryMaxSentences)
	if err != nil {
		return IngestResult{}, fmt.Errorf("summarize: %w", err)
	}
	if err := s.store.UpdateUnitSummary(ctx, scope.UnitID, summary); err != nil {
		return IngestResult{}, collabErr(CollaboratorStore, "update unit summary", err)
	}

	s.log.Info("documents ingested",
		zap.String("namespace", ns),
		zap.Int("documents", len(documents)),
		zap.Int("chunks", len(allChunks)),
		zap.String("embedder", s.embedder.Name()),
	)
	return IngestResult{Documents: len(documents), Chunks: len(allChunks), Summary: summary}, nil
}

// index prepares the embedder on chunks and makes them searchable under ns.
// The vector namespace is rebuilt when rebuild is set or when it does not hold
// exactly these chunks.
func (s *Service) index(ctx context.Context, ns string, chunks []domain.Chunk, rebuild bool) error {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	if err := s.embedder.Prepare(texts); err != nil {
		return collabErr(CollaboratorEmbedder, "prepare", err)
	}
	if !rebuild {
		n, err := s.vectors.Count(ctx, ns)
		if err != nil {
			return collabErr(CollaboratorVectorStore, "count", err)
		}
		rebuild = n != len(chunks)
	}
	if rebuild {
		vectors, err := s.embedAll(ctx, texts)
		if err != nil {
			return err
		}
		if err := s.vectors.Clear(ctx, ns); err != nil {
			return collabErr(CollaboratorVectorStore, "clear", err)
		}
		if err := s.vectors.Init(ctx, ns, len(vectors[0])); err != nil {
			return collabErr(CollaboratorVectorStore, "init", err)
		}
		if err := s.vectors.Upsert(ctx, ns, chunks, vectors); err != nil {
			return collabErr(CollaboratorVectorStore, "upsert", err)
		}
	}

	s.mu.Lock()
	s.chunks[ns] = chunks
	s.active = ns
	s.mu.Unlock()
	return nil
}

// ensureIndexed restores the scope's stored chunks into the embedder, the
// vector namespace and the lexical fallback unless this service already
// prepared them. A unit that was never ingested yields ErrNoContext.
func (s *Service) ensureIndexed(ctx context.Context, scope domain.Scope) error {
	ns := scope.Namespace()
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if active == ns {
		return nil
	}
	chunks, err := s.store.ListChunks(ctx, scope)
	if err != nil {
		return collabErr(CollaboratorStore, "list chunks", err)
	}
	if len(chunks) == 0 {
		return ErrNoContext
	}
	if err := s.index(ctx, ns, chunks, false); err != nil {
		return err
	}
	s.log.Debug("index restored", zap.String("namespace", ns), zap.Int("chunks", len(chunks)))
	return nil
}

// embedAll embeds texts concurrently, keeping the input order.
func (s *Service) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.IngestConcurrency)
	for i := range texts {
		i := i
		g.Go(func() error {
			vec, err := s.embedder.Embed(gctx, texts[i])
			if err != nil {
				return collabErr(CollaboratorEmbedder, "embed chunk", err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// loadDocuments expands glob patterns and reads every .txt file they match.
func loadDocuments(paths []string) ([]domain.Document, error) {
	var documents []domain.Document
	seen := make(map[string]struct{})
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, err
			}
			documents = append(documents, domain.Document{ID: hashString(m), Path: m, Content: string(data)})
		}
	}
	if len(documents) == 0 {
		return nil, ErrNoDocuments
	}
	return documents, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
