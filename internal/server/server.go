// Package server exposes the workflow and embedding pipelines over HTTP and
// drives the chat surfaces over a WebSocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/promptflow/internal/history"
	"github.com/ziadkadry99/promptflow/internal/surface"
	"github.com/ziadkadry99/promptflow/internal/tools"
	"github.com/ziadkadry99/promptflow/internal/workflow"
)

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string // empty allows only localhost
}

// GraphSource exposes the current workflow graph.
type GraphSource interface {
	Graph() workflow.Graph
}

// EmbeddingRunner runs the embeddings tool.
type EmbeddingRunner interface {
	surface.Embedder
	Run(ctx context.Context, params map[string]string) (*tools.EmbeddingsOutput, error)
}

// Deps are the pipelines the server serves. History may be nil.
type Deps struct {
	Workflow  surface.WorkflowRunner
	Graph     GraphSource
	Embedding EmbeddingRunner
	History   *history.Store
	Logger    *slog.Logger
}

// Server is the promptflow HTTP server.
type Server struct {
	cfg        Config
	deps       Deps
	logger     *slog.Logger
	origins    originPolicy
	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all routes registered.
func New(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		deps:    deps,
		logger:  logger.With("component", "server"),
		origins: newOriginPolicy(cfg.AllowedOrigins),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.origins.checkOrigin}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return s.origins.allowed(origin)
		},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The WebSocket outlives any request timeout.
	r.Get("/ws/surfaces", s.handleSurfaces)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(120 * time.Second))
		s.registerRoutes(r)
		if s.deps.History != nil {
			history.RegisterRoutes(r, s.deps.History)
		}
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("promptflow server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
