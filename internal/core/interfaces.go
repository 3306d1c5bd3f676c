package core

import (
	"context"
	"os"

	"github.com/davidemeka/ragstore/internal/models"
)

// ObjectStore defines interactions with S3 or any bucket-style storage.
// It is abstract so the resolver and bulk driver can be tested without
// AWS and the backend swapped for MinIO, GCS, etc.
type ObjectStore interface {
	// Head verifies the object exists. Returns errs.ErrNotFound for a
	// missing object and errs.ErrConnectivity for transport failures.
	Head(ctx context.Context, bucket, key string) error

	// DownloadTo fetches the object into the file at dest.
	DownloadTo(ctx context.Context, bucket, key, dest string) error

	// List returns all object keys in the bucket.
	List(ctx context.Context, bucket string) ([]string, error)
}

// Resolved is a readable local copy of a document reference. For remote
// references LocalPath names a temporary download that Cleanup removes;
// for local references Cleanup is a no-op. Cleanup is safe to call more
// than once.
type Resolved struct {
	Ref       string // the original reference, as given
	LocalPath string
	Temp      bool
}

func (r *Resolved) Cleanup() {
	if r.Temp && r.LocalPath != "" {
		_ = os.Remove(r.LocalPath)
		r.LocalPath = ""
	}
}

// SourceResolver normalizes a document reference (local path or
// s3://bucket/key URI) into a readable local file.
type SourceResolver interface {
	Resolve(ctx context.Context, ref string) (*Resolved, error)
}

// PageExtractor pulls per-page plain text out of a local PDF file.
// maxPages <= 0 means all pages.
type PageExtractor interface {
	Pages(path string, maxPages int) ([]string, error)
}

// Processor turns a document reference into provenance-stamped chunks.
type Processor interface {
	Process(ctx context.Context, ref string) ([]models.Chunk, error)
}

// Embedder converts batches of text into fixed-dimensionality vectors,
// preserving input order and count. Dimension returns 0 when the model
// dimensionality is unknown.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// VectorStore is one persistent collection of embedded chunks
// supporting append and nearest-neighbor query.
type VectorStore interface {
	Add(ctx context.Context, chunks []models.EmbeddedChunk) error
	Search(ctx context.Context, query []float32, k int) ([]models.EmbeddedChunk, error)
}
