// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server provides the HTTP API for the research assistant.
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

	"github.com/pdiddy/research-assistant/internal/progress"
	"github.com/pdiddy/research-assistant/internal/store"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// requestSlack is added to the run timeout for the request timeout and the
// server write timeout so that a run finishing at its deadline can still be
// saved and written back.
const requestSlack = time.Minute

// Runner runs one research pipeline.
type Runner interface {
	Run(ctx context.Context, topic string, opts types.ResearchOptions) (*types.ResearchSummary, error)
}

// Server is the HTTP server for the research API.
type Server struct {
	runner     Runner
	store      store.Store
	hub        *progress.Hub
	config     types.ServerConfig
	runTimeout time.Duration
	logger     *zap.Logger
	server     *http.Server
}

// NewServer creates a server with the given dependencies. A zero runTimeout
// leaves runs bounded only by the upstream client timeouts.
func NewServer(
	runner Runner,
	st store.Store,
	hub *progress.Hub,
	cfg types.ServerConfig,
	runTimeout time.Duration,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		runner:     runner,
		store:      st,
		hub:        hub,
		config:     cfg,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Long-lived connections stay outside the timeout and compression group.
	if s.hub != nil {
		r.Get("/ws", progress.ServeWS(s.hub, s.logger))
	}
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout()))
		r.Use(middleware.Compress(5))

		r.Post("/api/research", s.handleResearch)
		r.Get("/api/research", s.handleList)
		r.Get("/api/research/{id}", s.handleGet)
		r.Get("/api/research/{id}/export", s.handleExport)
	})
	return r
}

func (s *Server) requestTimeout() time.Duration {
	if s.runTimeout <= 0 {
		return 30*time.Minute + requestSlack
	}
	return s.runTimeout + requestSlack
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.requestTimeout() + requestSlack,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server and disconnects progress subscribers.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
