package core

import (
	"time"

	"github.com/go-chi/chi/v5"
)

// defaultRequestTimeout is the soft context deadline applied when the server
// config does not specify a write timeout.
const defaultRequestTimeout = 29 * time.Second

// MountRoutes registers the global middleware chain, the /v1 handler groups,
// and the public health endpoint.
//
// Middleware order matters:
//  1. Recoverer         - outermost, catches every panic.
//  2. ContextTimeout    - soft deadline before the server write timeout.
//  3. RequestID         - correlation ID for logs and responses.
//  4. SecurityHeaders   - present on all responses, including errors.
//  5. RequestLogger     - structured logging with credential redaction.
//  6. Metrics           - latency and count recording.
//  7. AutomationKey     - bcrypt key check; /health and the Stripe webhook
//     are exempt.
func (s *Server) MountRoutes() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(s.SecurityHeadersMiddleware)
	s.router.Use(RequestLogger(s.Logger))
	s.router.Use(s.MetricsMiddleware)
	s.router.Use(s.AutomationKeyMiddleware)

	s.router.Route("/v1", func(r chi.Router) {
		for _, registrar := range s.V1RouteRegistrars {
			registrar(r)
		}
	})

	s.router.Get("/health", s.HandleHealth)
}

// requestTimeout derives the soft request deadline from the configured write
// timeout, leaving a second for the response to flush.
func (s *Server) requestTimeout() time.Duration {
	if wt := s.Config.Server.WriteTimeout; wt > time.Second {
		return wt - time.Second
	}
	return defaultRequestTimeout
}
