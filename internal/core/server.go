// Package core provides the API chassis for the PerilWatch platform.
// It builds the chi router, enforces cross-cutting concerns -- recovery,
// request correlation, authentication, logging, and error shaping -- before
// requests reach the domain handlers, and owns graceful shutdown of the
// resources the process holds.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perilwatch/internal/config"
)

// MetricsCollector records API telemetry. The production implementation
// flushes to CloudWatch; tests inject a recording fake.
type MetricsCollector interface {
	// RecordRequest records one completed API request with its latency.
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// ShutdownHook releases one resource during graceful shutdown. Hooks run in
// registration order and every hook runs even if an earlier one fails.
type ShutdownHook struct {
	Name  string
	Close func(ctx context.Context) error
}

// Server bundles the dependencies of the HTTP API so tests can inject fakes
// and environments can wire distinct backends.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator
	Metrics   MetricsCollector

	// HealthProbes are checked concurrently by GET /health.
	HealthProbes []HealthProbe

	// V1RouteRegistrars register domain handler routes under /v1. Populated
	// by the entry point; the indirection keeps core free of handler imports.
	V1RouteRegistrars []func(chi.Router)

	router        *chi.Mux
	shutdownHooks []ShutdownHook
}

// NewServer validates the critical dependencies and prepares the router.
// The caller mounts routes afterwards via MountRoutes; the separation lets
// tests register custom routes.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler for http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the underlying chi.Mux for route registration in tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// OnShutdown registers a resource to be released during Shutdown.
func (s *Server) OnShutdown(name string, close func(ctx context.Context) error) {
	s.shutdownHooks = append(s.shutdownHooks, ShutdownHook{Name: name, Close: close})
}

// Shutdown runs every registered shutdown hook. It continues past failures so
// one stuck resource cannot prevent the others from closing, and returns the
// first error encountered.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	var firstErr error
	for _, hook := range s.shutdownHooks {
		if err := hook.Close(ctx); err != nil {
			s.Logger.Error("shutdown hook failed", "hook", hook.Name, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("closing %s: %w", hook.Name, err)
			}
		}
	}

	s.Logger.Info("server shutdown complete")
	return firstErr
}
