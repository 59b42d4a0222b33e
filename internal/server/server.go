// Package server provides the HTTP API for DocSense.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/chatstore"
	"github.com/docsense/docsense/internal/config"
	"github.com/docsense/docsense/internal/ingest"
	"github.com/docsense/docsense/internal/pipeline"
	"github.com/docsense/docsense/internal/session"
)

// Server is the HTTP server for the DocSense API.
type Server struct {
	sessions *session.Manager
	ingester *ingest.Ingester
	pipeline *pipeline.Pipeline
	history  chatstore.Store
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	sessions *session.Manager,
	ingester *ingest.Ingester,
	pl *pipeline.Pipeline,
	history chatstore.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		sessions: sessions,
		ingester: ingester,
		pipeline: pl,
		history:  history,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/chat/init", s.handleInit)
	r.Post("/chat/query", s.handleQuery)
	r.Get("/chat/history", s.handleGetHistory)
	r.Delete("/chat/history", s.handleClearHistory)
	r.Get("/chat/history/{sessionID}", s.handleGetHistory)
	r.Delete("/chat/history/{sessionID}", s.handleClearHistory)
	r.Post("/store/upload", s.handleUpload)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
