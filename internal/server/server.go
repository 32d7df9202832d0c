// Package server provides the HTTP API for docsearch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/docuvault/docsearch/internal/config"
	"github.com/docuvault/docsearch/internal/maintenance"
	"github.com/docuvault/docsearch/internal/search"
	"github.com/docuvault/docsearch/internal/storage"
)

// Server is the HTTP server for the docsearch API.
type Server struct {
	engine     *search.Engine
	maintainer *maintenance.Maintainer
	storage    storage.DocumentStore
	config     *config.Config
	logger     *zap.Logger
	server     *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	maintainer *maintenance.Maintainer,
	store storage.DocumentStore,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:     engine,
		maintainer: maintainer,
		storage:    store,
		config:     cfg,
		logger:     logger,
	}
}

// Routes builds the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/documents", s.handleCreateDocument)
	r.Get("/api/v1/documents/{id}", s.handleGetDocument)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Post("/api/v1/index/reindex", s.handleReindex)
	r.Get("/api/v1/index/stats", s.handleStats)
	r.Post("/api/v1/index/{id}", s.handleIndexDocument)
	r.Delete("/api/v1/index/{id}", s.handleRemoveFromIndex)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
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
