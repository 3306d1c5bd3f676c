package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/errs"
	"github.com/davidemeka/ragstore/internal/core/store"
	"github.com/davidemeka/ragstore/internal/models"
)

type fakeObjects struct {
	keys    []string
	listErr error
}

func (f *fakeObjects) Head(_ context.Context, _, _ string) error { return nil }

func (f *fakeObjects) DownloadTo(_ context.Context, _, _, _ string) error { return nil }

func (f *fakeObjects) List(_ context.Context, _ string) ([]string, error) {
	return f.keys, f.listErr
}

type stubProcessor struct {
	mu     sync.Mutex
	failed map[string]error
	calls  []string
}

func (s *stubProcessor) Process(_ context.Context, ref string) ([]models.Chunk, error) {
	s.mu.Lock()
	s.calls = append(s.calls, ref)
	s.mu.Unlock()
	if err, ok := s.failed[ref]; ok {
		return nil, err
	}
	return []models.Chunk{
		{Text: "chunk one from " + ref, Source: ref, ChunkIndex: 0, Page: 1},
		{Text: "chunk two from " + ref, Source: ref, ChunkIndex: 1, Page: 1},
	}, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (stubEmbedder) Dimension() int { return 3 }

type recordingTier struct {
	mu    sync.Mutex
	added [][]models.EmbeddedChunk
}

func (r *recordingTier) Add(_ context.Context, chunks []models.EmbeddedChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, chunks)
	return nil
}

func (r *recordingTier) Search(_ context.Context, _ []float32, _ int) ([]models.EmbeddedChunk, error) {
	return nil, nil
}

func newTieredForTest(t *testing.T, hot, cold *recordingTier) *store.TieredStore {
	t.Helper()
	// Avoid wrapping a nil *recordingTier in a non-nil interface value.
	var coldStore core.VectorStore
	if cold != nil {
		coldStore = cold
	}
	ts, err := store.NewTieredStore(hot, coldStore)
	require.NoError(t, err)
	return ts
}

func TestRun_PartialFailureNeverAbortsBatch(t *testing.T) {
	objects := &fakeObjects{keys: []string{
		"docs/a.pdf",
		"docs/b.PDF",
		"notes.txt",
		"docs/corrupt.pdf",
		"docs/c.pdf",
	}}
	proc := &stubProcessor{failed: map[string]error{
		"s3://kb/docs/corrupt.pdf": fmt.Errorf("%w: damaged xref table", errs.ErrProcessing),
	}}
	hot := &recordingTier{}
	cold := &recordingTier{}
	b := NewBulkIngestor(objects, proc, stubEmbedder{}, newTieredForTest(t, hot, cold), 1, zap.NewNop())

	result, err := b.Run(context.Background(), "kb")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "s3://kb/docs/corrupt.pdf")
	assert.Contains(t, result.Errors[0], "damaged xref table")

	// non-PDF objects are skipped without touching the processor
	for _, call := range proc.calls {
		assert.True(t, strings.HasSuffix(strings.ToLower(call), ".pdf"), call)
	}
	assert.Len(t, proc.calls, 4)

	// bulk ingestion writes to the cold tier only
	assert.Empty(t, hot.added)
	assert.Len(t, cold.added, 3)
}

func TestRun_ParallelWorkers(t *testing.T) {
	var keys []string
	for i := 0; i < 12; i++ {
		keys = append(keys, fmt.Sprintf("doc-%02d.pdf", i))
	}
	objects := &fakeObjects{keys: keys}
	proc := &stubProcessor{}
	cold := &recordingTier{}
	b := NewBulkIngestor(objects, proc, stubEmbedder{}, newTieredForTest(t, &recordingTier{}, cold), 4, zap.NewNop())

	result, err := b.Run(context.Background(), "kb")
	require.NoError(t, err)
	assert.Equal(t, 12, result.Processed)
	assert.Empty(t, result.Errors)
	assert.Len(t, cold.added, 12)
}

func TestRun_MissingBucketIsHardPrecondition(t *testing.T) {
	proc := &stubProcessor{}
	b := NewBulkIngestor(&fakeObjects{keys: []string{"a.pdf"}}, proc, stubEmbedder{}, newTieredForTest(t, &recordingTier{}, &recordingTier{}), 1, zap.NewNop())

	result, err := b.Run(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfig)
	assert.Zero(t, result.Processed)
	assert.Empty(t, proc.calls, "precondition failures must short-circuit before enumeration")
}

func TestRun_MissingWiringIsHardPrecondition(t *testing.T) {
	b := NewBulkIngestor(nil, &stubProcessor{}, stubEmbedder{}, newTieredForTest(t, &recordingTier{}, nil), 1, zap.NewNop())

	result, err := b.Run(context.Background(), "kb")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfig)
	assert.Zero(t, result.Processed)
}

func TestRun_ListFailureIsRecordedAndReturned(t *testing.T) {
	objects := &fakeObjects{listErr: fmt.Errorf("%w: dial tcp: timeout", errs.ErrConnectivity)}
	b := NewBulkIngestor(objects, &stubProcessor{}, stubEmbedder{}, newTieredForTest(t, &recordingTier{}, nil), 1, zap.NewNop())

	result, err := b.Run(context.Background(), "kb")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConnectivity)
	assert.Zero(t, result.Processed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "kb")
}

func TestRun_ColdTierUnconfigured(t *testing.T) {
	objects := &fakeObjects{keys: []string{"a.pdf"}}
	b := NewBulkIngestor(objects, &stubProcessor{}, stubEmbedder{}, newTieredForTest(t, &recordingTier{}, nil), 1, zap.NewNop())

	result, err := b.Run(context.Background(), "kb")
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "cold tier")
}
