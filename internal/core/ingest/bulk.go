// Package ingest drives bulk ingestion of a bucket's PDF documents
// through the processor, embedder and cold tier of the vector store.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/errs"
	"github.com/davidemeka/ragstore/internal/core/store"
	"github.com/davidemeka/ragstore/internal/models"
)

type BulkIngestor struct {
	objects   core.ObjectStore
	processor core.Processor
	embedder  core.Embedder
	store     *store.TieredStore
	workers   int
	log       *zap.Logger
}

// NewBulkIngestor wires the driver. workers bounds per-document
// parallelism; anything below 1 runs sequentially.
func NewBulkIngestor(objects core.ObjectStore, proc core.Processor, emb core.Embedder, st *store.TieredStore, workers int, log *zap.Logger) *BulkIngestor {
	if workers < 1 {
		workers = 1
	}
	return &BulkIngestor{
		objects:   objects,
		processor: proc,
		embedder:  emb,
		store:     st,
		workers:   workers,
		log:       log,
	}
}

// Run enumerates bucket and ingests every .pdf object into the cold
// tier. A failing document is recorded and skipped, never aborting the
// batch; the result is returned even on partial failure. Missing
// wiring is a hard precondition failure reported before enumeration.
func (b *BulkIngestor) Run(ctx context.Context, bucket string) (models.IngestionResult, error) {
	var result models.IngestionResult

	if bucket == "" {
		return result, fmt.Errorf("%w: no bucket name configured", errs.ErrConfig)
	}
	if b.objects == nil || b.processor == nil || b.embedder == nil || b.store == nil {
		return result, fmt.Errorf("%w: bulk ingestor is not fully wired", errs.ErrConfig)
	}

	keys, err := b.objects.List(ctx, bucket)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list bucket %s: %v", bucket, err))
		return result, err
	}
	b.log.Info("scanning bucket", zap.String("bucket", bucket), zap.Int("objects", len(keys)))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for _, key := range keys {
		if !strings.HasSuffix(strings.ToLower(key), ".pdf") {
			b.log.Debug("skipping non-pdf object", zap.String("key", key))
			continue
		}
		uri := fmt.Sprintf("s3://%s/%s", bucket, key)

		g.Go(func() error {
			n, err := b.ingestOne(gctx, uri)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to process document %s: %v", uri, err))
				return nil
			}
			if n > 0 {
				result.Processed++
			}
			return nil
		})
	}

	// Workers record failures instead of returning them, so the only
	// error surfaced here is context cancellation.
	if err := g.Wait(); err != nil {
		return result, err
	}

	b.log.Info("bulk ingestion finished",
		zap.Int("processed", result.Processed),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// ingestOne runs one document through process -> embed -> cold write
// and returns the number of chunks stored.
func (b *BulkIngestor) ingestOne(ctx context.Context, uri string) (int, error) {
	chunks, err := b.processor.Process(ctx, uri)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		b.log.Warn("no chunks generated", zap.String("uri", uri))
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := b.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, err
	}

	embedded := make([]models.EmbeddedChunk, len(chunks))
	for i := range chunks {
		embedded[i] = models.EmbeddedChunk{Chunk: chunks[i], Embedding: vectors[i]}
	}
	if err := b.store.Add(ctx, embedded, models.TierCold); err != nil {
		return 0, err
	}

	b.log.Info("ingested document", zap.String("uri", uri), zap.Int("chunks", len(embedded)))
	return len(embedded), nil
}
