package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/errs"
	"github.com/davidemeka/ragstore/internal/models"
)

// ColdStore is the durable remote tier backed by Postgres with the
// pgvector extension.
type ColdStore struct {
	db  *sql.DB
	dim int
}

// NewColdStore connects to databaseURL, verifies the connection and
// ensures the pgvector schema exists. dim sizes the vector column; 0
// leaves the column unsized and disables length validation.
func NewColdStore(ctx context.Context, databaseURL string, dim int) (*ColdStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is empty", errs.ErrConfig)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open cold store: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctxPing, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping cold store: %v", errs.ErrConnectivity, err)
	}

	if err := bootstrap(ctxPing, db, dim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap cold store: %w", err)
	}

	return &ColdStore{db: db, dim: dim}, nil
}

func bootstrap(ctx context.Context, db *sql.DB, dim int) error {
	column := "vector"
	if dim > 0 {
		column = fmt.Sprintf("vector(%d)", dim)
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS rag_chunks (
				id          UUID PRIMARY KEY,
				source      TEXT NOT NULL,
				chunk_index INT  NOT NULL,
				page        INT  NOT NULL DEFAULT 0,
				text        TEXT NOT NULL,
				embedding   %s   NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, column),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec bootstrap: %w", err)
		}
	}
	return tx.Commit()
}

func (s *ColdStore) Close() error {
	return s.db.Close()
}

// Add inserts chunks in a single transaction.
func (s *ColdStore) Add(ctx context.Context, chunks []models.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for i := range chunks {
		if s.dim > 0 && len(chunks[i].Embedding) != s.dim {
			return fmt.Errorf("%w: cold store expects %d-dim vectors, got %d", errs.ErrConfig, s.dim, len(chunks[i].Embedding))
		}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	const q = `
		INSERT INTO rag_chunks (id, source, chunk_index, page, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), ch.Source, ch.ChunkIndex, ch.Page, ch.Text, pgvector.NewVector(ch.Embedding),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	return tx.Commit()
}

// Search returns the k nearest chunks ordered by pgvector distance.
func (s *ColdStore) Search(ctx context.Context, query []float32, k int) ([]models.EmbeddedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	const q = `
		SELECT source, chunk_index, page, text, embedding
		FROM rag_chunks
		ORDER BY embedding <-> $1
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, q, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("%w: cold store search: %v", errs.ErrConnectivity, err)
	}
	defer rows.Close()

	var out []models.EmbeddedChunk
	for rows.Next() {
		var (
			ch  models.EmbeddedChunk
			emb pgvector.Vector
		)
		if err := rows.Scan(&ch.Source, &ch.ChunkIndex, &ch.Page, &ch.Text, &emb); err != nil {
			return nil, err
		}
		ch.Embedding = emb.Slice()
		out = append(out, ch)
	}
	return out, rows.Err()
}

var _ core.VectorStore = (*ColdStore)(nil)
