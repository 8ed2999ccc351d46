// Package server exposes classification and page tracking over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/formtrack/internal/config"
	"git.home.luguber.info/inful/formtrack/internal/eventstore"
	"git.home.luguber.info/inful/formtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/formtrack/internal/metrics"
	"git.home.luguber.info/inful/formtrack/internal/pipeline"
	"git.home.luguber.info/inful/formtrack/internal/server/middleware"
	"git.home.luguber.info/inful/formtrack/internal/version"
)

// Deps are the components the API serves.
type Deps struct {
	Tracker    *pipeline.Tracker
	Projection *eventstore.FailureProjection // nil when the event store is disabled
	Registry   *prom.Registry
	Logger     *slog.Logger
}

// Server represents the API server.
type Server struct {
	Addr    string
	router  *chi.Mux
	server  *http.Server
	deps    Deps
	adapter *errors.HTTPErrorAdapter
	maxBody int64
}

// NewServer creates a new API server.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{
		Addr:    cfg.Addr,
		router:  chi.NewRouter(),
		deps:    deps,
		adapter: errors.NewHTTPErrorAdapter(deps.Logger),
		maxBody: cfg.MaxBodyBytes,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Chain(s.deps.Logger, s.adapter))
	s.router.Use(chimw.Timeout(30 * time.Second))

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/classify", s.handleClassify)
	s.router.Post("/pages", s.handlePages)
	s.router.Get("/stats", s.handleStats)

	s.router.Route("/failed", func(r chi.Router) {
		r.Get("/", s.handleListFailed)
		r.Post("/replay", s.handleReplay)
		r.Delete("/", s.handleClearFailed)
	})

	s.router.Handle("/metrics", metrics.HTTPHandler(s.deps.Registry))
}

// Start starts the API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Response represents a standard API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Error writes an error response.
func (s *Server) Error(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Response{Success: false, Error: message})
}

// Success writes a success response.
func (s *Server) Success(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, Response{Success: true, Data: data})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": version.Resolved()})
}
