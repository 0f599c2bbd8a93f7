// Package server provides the HTTP API: session lifecycle, document
// processing, chart data, and document chat.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nutrigen/nutrigen/internal/chat"
	"github.com/nutrigen/nutrigen/internal/config"
	"github.com/nutrigen/nutrigen/internal/indexer"
	"github.com/nutrigen/nutrigen/internal/pipeline"
	"github.com/nutrigen/nutrigen/internal/search"
	"github.com/nutrigen/nutrigen/internal/session"
	"github.com/nutrigen/nutrigen/internal/storage"
)

// Server is the HTTP server for the nutrition analysis API.
type Server struct {
	sessions  *session.Manager
	processor *pipeline.Processor
	answerer  *chat.Answerer
	engine    *search.Engine
	indexer   *indexer.Indexer
	storage   storage.Storage
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	sessions *session.Manager,
	processor *pipeline.Processor,
	answerer *chat.Answerer,
	engine *search.Engine,
	idx *indexer.Indexer,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		sessions:  sessions,
		processor: processor,
		answerer:  answerer,
		engine:    engine,
		indexer:   idx,
		storage:   store,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Model calls during processing and chat can take a while.
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Put("/sessions/{id}", s.handleRenameSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)

		r.Post("/sessions/{id}/documents", s.handleProcessDocuments)
		r.Get("/sessions/{id}/documents", s.handleListDocuments)
		r.Delete("/documents/{id}", s.handleDeleteDocument)

		r.Get("/sessions/{id}/charts", s.handleCharts)
		r.Get("/sessions/{id}/mealplan", s.handleMealPlan)
		r.Get("/sessions/{id}/measures", s.handleMeasures)

		r.Post("/sessions/{id}/chat", s.handleChat)
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
	})
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
