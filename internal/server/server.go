// Package server provides the HTTP API for Atsume.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/config"
	"github.com/hyperjump/atsume/internal/ingest"
	"github.com/hyperjump/atsume/internal/search"
	"github.com/hyperjump/atsume/internal/storage"
)

// Server is the HTTP server for the Atsume API.
type Server struct {
	engine   *search.Engine
	ingester *ingest.Ingester
	storage  storage.Store
	config   *config.ServerConfig
	logger   *zap.Logger
	metrics  *Metrics
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	ingester *ingest.Ingester,
	store storage.Store,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:   engine,
		ingester: ingester,
		storage:  store,
		config:   cfg,
		logger:   logger,
		metrics:  NewMetrics(),
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/context", s.handleContext)
	r.Get("/api/v1/suggestions", s.handleSuggestions)
	r.Get("/api/v1/stats", s.handleStats)
	r.Post("/api/v1/documents", s.handleIngestDocument)
	r.Get("/api/v1/documents/{id}", s.handleGetDocument)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
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
