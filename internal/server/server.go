// Package server provides the HTTP API for the bidsift pipeline.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/config"
	"github.com/hyperjump/bidsift/internal/fastpath"
	"github.com/hyperjump/bidsift/internal/metrics"
	"github.com/hyperjump/bidsift/internal/patterns"
	"github.com/hyperjump/bidsift/internal/pipeline"
	"github.com/hyperjump/bidsift/internal/scoring"
	"github.com/hyperjump/bidsift/internal/storage"
)

// Server is the HTTP server for the bidsift API.
type Server struct {
	registry *patterns.Registry
	scorer   *scoring.Scorer
	fastPath *fastpath.FastPath
	runner   *pipeline.Runner
	store    storage.Store
	metrics  *metrics.Metrics
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. store and
// metrics may be nil; the status and metrics endpoints then degrade.
func NewServer(
	registry *patterns.Registry,
	scorer *scoring.Scorer,
	fastPath *fastpath.FastPath,
	runner *pipeline.Runner,
	store storage.Store,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		registry: registry,
		scorer:   scorer,
		fastPath: fastPath,
		runner:   runner,
		store:    store,
		metrics:  m,
		config:   cfg,
		logger:   logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/score", s.handleScore)
	r.Post("/api/v1/run", s.handleRun)
	r.Post("/api/v1/extract", s.handleExtract)
	r.Get("/api/v1/trades", s.handleTrades)
	r.Get("/api/v1/runs", s.handleListRuns)
	r.Get("/api/v1/runs/{id}", s.handleGetRun)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
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
