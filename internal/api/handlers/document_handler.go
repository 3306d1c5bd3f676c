package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/errs"
	"github.com/davidemeka/ragstore/internal/core/ingest"
	"github.com/davidemeka/ragstore/internal/core/store"
	"github.com/davidemeka/ragstore/internal/models"
)

type DocumentHandler struct {
	processor core.Processor
	embedder  core.Embedder
	store     *store.TieredStore
	ingestor  *ingest.BulkIngestor
	bucket    string
	log       *zap.Logger
}

func NewDocumentHandler(proc core.Processor, emb core.Embedder, st *store.TieredStore, ing *ingest.BulkIngestor, bucket string, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{processor: proc, embedder: emb, store: st, ingestor: ing, bucket: bucket, log: log}
}

type uploadResult struct {
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
}

// UploadDocuments ingests one or more uploaded PDFs into the hot tier.
// Failures are reported per file; one bad upload never fails the rest.
func (h *DocumentHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "no files provided", http.StatusBadRequest)
		return
	}

	results := make([]uploadResult, 0, len(files))
	for _, fh := range files {
		count, err := h.ingestUpload(r, fh)
		res := uploadResult{Filename: fh.Filename, ChunkCount: count}
		if err != nil {
			h.log.Warn("upload failed", zap.String("filename", fh.Filename), zap.Error(err))
			res.Error = err.Error()
		}
		results = append(results, res)
	}

	respondJSON(w, http.StatusOK, results)
}

// ingestUpload stages the upload in a temp file, processes and embeds
// it, and appends the chunks to the hot tier. The chunk source is
// rewritten to the client-supplied filename so provenance never leaks
// the temp path.
func (h *DocumentHandler) ingestUpload(r *http.Request, fh *multipart.FileHeader) (int, error) {
	src, err := fh.Open()
	if err != nil {
		return 0, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "ragstore-upload-*.pdf")
	if err != nil {
		return 0, fmt.Errorf("stage upload: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("stage upload: %w", err)
	}

	chunks, err := h.processor.Process(r.Context(), tmpPath)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	name := filepath.Base(fh.Filename)
	texts := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].Source = name
		texts[i] = chunks[i].Text
	}

	vectors, err := h.embedder.EmbedTexts(r.Context(), texts)
	if err != nil {
		return 0, err
	}

	embedded := make([]models.EmbeddedChunk, len(chunks))
	for i := range chunks {
		embedded[i] = models.EmbeddedChunk{Chunk: chunks[i], Embedding: vectors[i]}
	}
	if err := h.store.Add(r.Context(), embedded, models.TierHot); err != nil {
		return 0, err
	}
	return len(embedded), nil
}

type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type queryMatch struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// QueryDocuments embeds the query text and returns the nearest chunks
// from the tiered store.
func (h *DocumentHandler) QueryDocuments(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.K <= 0 {
		req.K = 4
	}

	vectors, err := h.embedder.EmbedTexts(r.Context(), []string{req.Query})
	if err != nil {
		respondError(w, err)
		return
	}

	matches, err := h.store.Search(r.Context(), vectors[0], req.K)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]queryMatch, 0, len(matches))
	for _, m := range matches {
		meta := map[string]any{
			"source":      m.Source,
			"chunk_index": m.ChunkIndex,
		}
		if m.Page > 0 {
			meta["page"] = m.Page
		}
		out = append(out, queryMatch{Content: m.Text, Metadata: meta})
	}
	respondJSON(w, http.StatusOK, out)
}

// IngestBucket runs the bulk driver over the configured bucket and
// returns the accumulated result, even on partial failure.
func (h *DocumentHandler) IngestBucket(w http.ResponseWriter, r *http.Request) {
	result, err := h.ingestor.Run(r.Context(), h.bucket)
	if err != nil && errors.Is(err, errs.ErrConfig) {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrUnsupportedFormat), errors.Is(err, errs.ErrOCRRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrConnectivity), errors.Is(err, errs.ErrEmbedding):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
