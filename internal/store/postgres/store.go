// Package postgres persists units, question sets and question history in
// PostgreSQL, keeping history embeddings in pgvector columns.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"questionbank/internal/domain"
	"questionbank/internal/question"
)

// DBTX is the subset of pgxpool.Pool and pgx.Tx used by the store.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	db   DBTX
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// Open connects to dsn, installs pgvector when needed and applies the schema.
func Open(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	if err := ensureExtension(ctx, dsn); err != nil {
		return nil, err
	}
	pool, err := NewPool(ctx, dsn, cfg)
	if err != nil {
		return nil, err
	}
	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) CreateUnit(ctx context.Context, unit domain.Unit) error {
	query := `
		INSERT INTO units (id, user_id, title, summary, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.Exec(ctx, query, unit.ID, unit.UserID, unit.Title, unit.Summary, unit.CreatedAt); err != nil {
		return fmt.Errorf("create unit: %w", err)
	}
	return nil
}

func (s *Store) GetUnit(ctx context.Context, id uuid.UUID) (domain.Unit, error) {
	query := `SELECT id, user_id, title, summary, created_at FROM units WHERE id = $1`
	var u domain.Unit
	err := s.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.UserID, &u.Title, &u.Summary, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Unit{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Unit{}, fmt.Errorf("get unit: %w", err)
	}
	return u, nil
}

func (s *Store) ListUnits(ctx context.Context, userID string) ([]domain.Unit, error) {
	query := `
		SELECT id, user_id, title, summary, created_at
		FROM units
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []domain.Unit
	for rows.Next() {
		var u domain.Unit
		if err := rows.Scan(&u.ID, &u.UserID, &u.Title, &u.Summary, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

func (s *Store) UpdateUnitSummary(ctx context.Context, id uuid.UUID, summary string) error {
	tag, err := s.db.Exec(ctx, `UPDATE units SET summary = $2 WHERE id = $1`, id, summary)
	if err != nil {
		return fmt.Errorf("update unit summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) SaveQuestionSet(ctx context.Context, set domain.QuestionSet) error {
	payload, err := json.Marshal(set.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	query := `
		INSERT INTO question_sets (id, user_id, unit_id, topic, question_type, questions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET topic = EXCLUDED.topic, question_type = EXCLUDED.question_type, questions = EXCLUDED.questions
	`
	_, err = s.db.Exec(ctx, query, set.ID, set.UserID, set.UnitID, set.Topic, string(set.Type), payload, set.CreatedAt)
	if err != nil {
		return fmt.Errorf("save question set: %w", err)
	}
	return nil
}

const questionSetColumns = `id, user_id, unit_id, topic, question_type, questions, created_at`

func (s *Store) GetQuestionSet(ctx context.Context, id uuid.UUID) (domain.QuestionSet, error) {
	query := `SELECT ` + questionSetColumns + ` FROM question_sets WHERE id = $1`
	set, err := scanQuestionSet(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionSet{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("get question set: %w", err)
	}
	return set, nil
}

// ListQuestionSets returns the scope's sets, newest first.
func (s *Store) ListQuestionSets(ctx context.Context, scope domain.Scope) ([]domain.QuestionSet, error) {
	query := `
		SELECT ` + questionSetColumns + `
		FROM question_sets
		WHERE user_id = $1 AND unit_id = $2
		ORDER BY created_at DESC
	`
	return s.querySets(ctx, query, scope.UserID, scope.UnitID)
}

func (s *Store) SearchQuestionSets(ctx context.Context, scope domain.Scope, topic string) ([]domain.QuestionSet, error) {
	query := `
		SELECT ` + questionSetColumns + `
		FROM question_sets
		WHERE user_id = $1 AND unit_id = $2 AND topic ILIKE $3
		ORDER BY created_at DESC
	`
	return s.querySets(ctx, query, scope.UserID, scope.UnitID, likePattern(topic))
}

func (s *Store) querySets(ctx context.Context, query string, args ...any) ([]domain.QuestionSet, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query question sets: %w", err)
	}
	defer rows.Close()

	var sets []domain.QuestionSet
	for rows.Next() {
		set, err := scanQuestionSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question set: %w", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query question sets: %w", err)
	}
	return sets, nil
}

func scanQuestionSet(row pgx.Row) (domain.QuestionSet, error) {
	var (
		set     domain.QuestionSet
		kind    string
		payload []byte
	)
	if err := row.Scan(&set.ID, &set.UserID, &set.UnitID, &set.Topic, &kind, &payload, &set.CreatedAt); err != nil {
		return domain.QuestionSet{}, err
	}
	set.Type = question.Type(kind)
	qs, err := question.Decode(set.Type, payload)
	if err != nil {
		return domain.QuestionSet{}, err
	}
	set.Questions = qs
	return set, nil
}

func (s *Store) DeleteQuestionSet(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM question_sets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// withinTx runs fn against a transaction, committing when it returns nil.
func (s *Store) withinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ReplaceChunks(ctx context.Context, scope domain.Scope, chunks []domain.Chunk) error {
	err := s.withinTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE user_id = $1 AND unit_id = $2`, scope.UserID, scope.UnitID); err != nil {
			return err
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"chunks"},
			[]string{"user_id", "unit_id", "position", "document_id", "chunk_id", "chunk_index", "text"},
			pgx.CopyFromSlice(len(chunks), func(i int) ([]any, error) {
				c := chunks[i]
				return []any{scope.UserID, scope.UnitID, i, c.DocumentID, c.ChunkID, c.Index, c.Text}, nil
			}),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("replace chunks: %w", err)
	}
	return nil
}

// ListChunks returns the scope's chunks in the order they were stored.
func (s *Store) ListChunks(ctx context.Context, scope domain.Scope) ([]domain.Chunk, error) {
	query := `
		SELECT document_id, chunk_id, chunk_index, text
		FROM chunks
		WHERE user_id = $1 AND unit_id = $2
		ORDER BY position ASC
	`
	rows, err := s.db.Query(ctx, query, scope.UserID, scope.UnitID)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.DocumentID, &c.ChunkID, &c.Index, &c.Text); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	return out, nil
}

func (s *Store) AppendExchange(ctx context.Context, ex domain.Exchange) error {
	query := `
		INSERT INTO exchanges (id, user_id, unit_id, question, answer, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.Exec(ctx, query, ex.ID, ex.UserID, ex.UnitID, ex.Question, ex.Answer, toVector(ex.Embedding), ex.CreatedAt)
	if err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	return nil
}

// ListExchanges returns the scope's exchanges in the order they were appended.
func (s *Store) ListExchanges(ctx context.Context, scope domain.Scope) ([]domain.Exchange, error) {
	query := `
		SELECT id, user_id, unit_id, question, answer, embedding, created_at
		FROM exchanges
		WHERE user_id = $1 AND unit_id = $2
		ORDER BY seq ASC
	`
	rows, err := s.db.Query(ctx, query, scope.UserID, scope.UnitID)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var out []domain.Exchange
	for rows.Next() {
		var (
			ex  domain.Exchange
			vec *pgvector.Vector
		)
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.UnitID, &ex.Question, &ex.Answer, &vec, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		ex.Embedding = fromVector(vec)
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// toVector converts an embedding for storage. Empty embeddings are stored as NULL
// because pgvector rejects zero-dimension vectors.
func toVector(v []float64) *pgvector.Vector {
	if len(v) == 0 {
		return nil
	}
	f := make([]float32, len(v))
	for i, x := range v {
		f[i] = float32(x)
	}
	vec := pgvector.NewVector(f)
	return &vec
}

func fromVector(v *pgvector.Vector) []float64 {
	if v == nil {
		return nil
	}
	s := v.Slice()
	if len(s) == 0 {
		return nil
	}
	out := make([]float64, len(s))
	for i, x := range s {
		out[i] = float64(x)
	}
	return out
}

// likePattern matches term anywhere in the column, treating LIKE metacharacters literally.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}
