package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// schema is applied in order by Migrate. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS units (
		id         UUID PRIMARY KEY,
		user_id    TEXT NOT NULL,
		title      TEXT NOT NULL,
		summary    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS units_user_idx ON units (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS chunks (
		user_id     TEXT NOT NULL,
		unit_id     UUID NOT NULL REFERENCES units (id) ON DELETE CASCADE,
		position    INT NOT NULL,
		document_id TEXT NOT NULL,
		chunk_id    TEXT NOT NULL,
		chunk_index INT NOT NULL,
		text        TEXT NOT NULL,
		PRIMARY KEY (user_id, unit_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS question_sets (
		id            UUID PRIMARY KEY,
		user_id       TEXT NOT NULL,
		unit_id       UUID NOT NULL REFERENCES units (id) ON DELETE CASCADE,
		topic         TEXT NOT NULL DEFAULT '',
		question_type TEXT NOT NULL,
		questions     JSONB NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS question_sets_scope_idx ON question_sets (user_id, unit_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS exchanges (
		id         UUID PRIMARY KEY,
		seq        BIGSERIAL,
		user_id    TEXT NOT NULL,
		unit_id    UUID NOT NULL REFERENCES units (id) ON DELETE CASCADE,
		question   TEXT NOT NULL,
		answer     TEXT NOT NULL,
		embedding  vector,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS exchanges_scope_idx ON exchanges (user_id, unit_id, seq)`,
}

// Migrate creates the tables used by Store when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ensureExtension installs pgvector over a single plain connection. The pool
// registers the vector types on connect, which fails while the type is missing.
func ensureExtension(ctx context.Context, dsn string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create extension vector: %w", err)
	}
	return nil
}
