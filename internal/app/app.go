package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/davidemeka/ragstore/internal/config"
	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/ingest"
	"github.com/davidemeka/ragstore/internal/core/llm"
	objectclient "github.com/davidemeka/ragstore/internal/core/object-client"
	"github.com/davidemeka/ragstore/internal/core/pdfx"
	"github.com/davidemeka/ragstore/internal/core/processor"
	"github.com/davidemeka/ragstore/internal/core/source"
	"github.com/davidemeka/ragstore/internal/core/splitter"
	"github.com/davidemeka/ragstore/internal/core/store"
)

// App owns every long-lived component: the two store handles, the
// embedder and the HTTP server. Everything is constructed once here
// and passed down explicitly; nothing is looked up from globals.
type App struct {
	Store     *store.TieredStore
	Processor core.Processor
	Embedder  *llm.GeminiEmbedder
	Ingestor  *ingest.BulkIngestor
	Server    *Server

	hot  *store.HotStore
	cold *store.ColdStore
	log  *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}
	dim := embedder.Dimension()
	if dim == 0 {
		log.Warn("embedding dimension unknown for model, stores will not validate vector length",
			zap.String("model", cfg.EmbedModel))
	}

	// The object store is optional; without it only local references
	// resolve and bulk ingestion is unavailable.
	var objects core.ObjectStore
	if cfg.RemoteEnabled() {
		objects, err = objectclient.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("initialize object store: %w", err)
		}
		log.Info("object store initialized", zap.String("region", cfg.AwsRegion))
	} else {
		log.Info("AWS credentials not set; remote references disabled")
	}

	split, err := splitter.New(cfg.MaxChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	proc := processor.NewDocumentProcessor(source.NewResolver(objects), pdfx.NewExtractor(), split)

	hot, err := store.NewHotStore(cfg.HotStorePath, dim)
	if err != nil {
		return nil, fmt.Errorf("initialize hot store: %w", err)
	}
	log.Info("hot store ready", zap.String("path", cfg.HotStorePath))

	var (
		cold     *store.ColdStore
		coldView core.VectorStore // stays nil when the cold tier is disabled
	)
	if cfg.DatabaseURL != "" {
		cold, err = store.NewColdStore(ctx, cfg.DatabaseURL, dim)
		if err != nil {
			_ = hot.Close()
			return nil, fmt.Errorf("initialize cold store: %w", err)
		}
		coldView = cold
		log.Info("cold store ready")
	} else {
		log.Info("DATABASE_URL not set; cold tier disabled")
	}

	tiered, err := store.NewTieredStore(hot, coldView)
	if err != nil {
		return nil, err
	}

	ingestor := ingest.NewBulkIngestor(objects, proc, embedder, tiered, cfg.IngestWorkers, log)
	server := NewServer(cfg, proc, embedder, tiered, ingestor, log)

	return &App{
		Store:     tiered,
		Processor: proc,
		Embedder:  embedder,
		Ingestor:  ingestor,
		Server:    server,
		hot:       hot,
		cold:      cold,
		log:       log,
	}, nil
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.cold != nil {
		_ = a.cold.Close()
	}
	if a.hot != nil {
		_ = a.hot.Close()
	}
}
