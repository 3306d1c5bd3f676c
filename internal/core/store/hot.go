package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/errs"
	"github.com/davidemeka/ragstore/internal/models"
)

// HotStore is the low-latency local tier: a single-file SQLite database
// with embeddings stored as float32 BLOBs and a brute-force cosine scan
// for nearest-neighbor queries. It is created once at startup and
// shared for the process lifetime.
type HotStore struct {
	db  *sql.DB
	dim int
}

// NewHotStore opens (or creates) the database at path. dim is the
// expected embedding length; 0 disables length validation.
func NewHotStore(path string, dim int) (*HotStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open hot store: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS chunks (
			id          TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			page        INTEGER NOT NULL DEFAULT 0,
			text        TEXT NOT NULL,
			embedding   BLOB NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap hot store: %w", err)
	}

	return &HotStore{db: db, dim: dim}, nil
}

func (s *HotStore) Close() error {
	return s.db.Close()
}

// Add appends chunks in a single transaction so concurrent ingestion
// runs never interleave a batch's writes.
func (s *HotStore) Add(ctx context.Context, chunks []models.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for i := range chunks {
		if s.dim > 0 && len(chunks[i].Embedding) != s.dim {
			return fmt.Errorf("%w: hot store expects %d-dim vectors, got %d", errs.ErrConfig, s.dim, len(chunks[i].Embedding))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	const q = `INSERT INTO chunks (id, source, chunk_index, page, text, embedding) VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), ch.Source, ch.ChunkIndex, ch.Page, ch.Text, encodeVector(ch.Embedding),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	return tx.Commit()
}

// Search scans every stored vector and returns the k most similar
// chunks by cosine similarity, best first. An empty store returns an
// empty result, never an error.
func (s *HotStore) Search(ctx context.Context, query []float32, k int) ([]models.EmbeddedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source, chunk_index, page, text, embedding FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("scan hot store: %w", err)
	}
	defer rows.Close()

	type scored struct {
		chunk models.EmbeddedChunk
		sim   float64
	}
	var candidates []scored
	for rows.Next() {
		var (
			ch   models.EmbeddedChunk
			blob []byte
		)
		if err := rows.Scan(&ch.Source, &ch.ChunkIndex, &ch.Page, &ch.Text, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("corrupt embedding for %s[%d]: %w", ch.Source, ch.ChunkIndex, err)
		}
		ch.Embedding = vec
		if sim, ok := cosineSimilarity(query, vec); ok {
			candidates = append(candidates, scored{chunk: ch, sim: sim})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	out := make([]models.EmbeddedChunk, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.chunk)
	}
	return out, nil
}

var _ core.VectorStore = (*HotStore)(nil)
