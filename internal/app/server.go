package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/davidemeka/ragstore/internal/api/handlers"
	"github.com/davidemeka/ragstore/internal/config"
	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/ingest"
	"github.com/davidemeka/ragstore/internal/core/store"
)

// Server wraps the HTTP server instance and its handlers. It carries no
// retrieval semantics of its own; authentication and session handling
// belong to an upstream gateway.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, proc core.Processor, emb core.Embedder, st *store.TieredStore, ing *ingest.BulkIngestor, log *zap.Logger) *Server {
	docHandler := handlers.NewDocumentHandler(proc, emb, st, ing, cfg.BucketName, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/documents/upload", docHandler.UploadDocuments)
		api.Post("/documents/query", docHandler.QueryDocuments)
		api.Post("/documents/ingest-bucket", docHandler.IngestBucket)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
