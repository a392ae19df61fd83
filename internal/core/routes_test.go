package core

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestMountRoutes_HealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	s.MountRoutes()

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMountRoutes_V1RequiresAutomationKey(t *testing.T) {
	s := newTestServer(t)
	s.V1RouteRegistrars = append(s.V1RouteRegistrars, func(r chi.Router) {
		r.Get("/stations", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	s.MountRoutes()

	// No key: rejected before the handler.
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stations", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid key: reaches the registered handler.
	r := httptest.NewRequest(http.MethodGet, "/v1/stations", nil)
	r.Header.Set("Authorization", "Bearer "+testAutomationKey)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMountRoutes_ResponsesCarryRequestIDAndSecurityHeaders(t *testing.T) {
	s := newTestServer(t)
	s.MountRoutes()

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestMountRoutes_UnknownRouteIs404(t *testing.T) {
	s := newTestServer(t)
	s.MountRoutes()

	r := httptest.NewRequest(http.MethodGet, "/v1/nope", nil)
	r.Header.Set("Authorization", "Bearer "+testAutomationKey)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
