package core

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"perilwatch/internal/types"
)

// authPublicPaths are exempt from the automation key check. The Stripe
// webhook authenticates by signature instead of by key.
var authPublicPaths = map[string]bool{
	"/health":             true,
	"/v1/webhooks/stripe": true,
}

// AutomationKeyMiddleware authenticates automation clients. Clients present
// the raw key as "Authorization: Bearer <key>" or in the X-API-Key header;
// only the bcrypt hash of the key is ever configured on the server, so a
// leaked environment dump does not disclose the credential.
func (s *Server) AutomationKeyMiddleware(next http.Handler) http.Handler {
	keyHash := []byte(s.Config.Security.AutomationKeyHash.Unmask())

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authPublicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		key := extractAPIKey(r)
		if key == "" {
			Error(w, r, types.NewAppError(types.ErrCodeAuthKeyMissing, "API key is required", nil))
			return
		}

		if err := bcrypt.CompareHashAndPassword(keyHash, []byte(key)); err != nil {
			s.Logger.Warn("automation key rejected",
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			Error(w, r, types.NewAppError(types.ErrCodeAuthKeyInvalid, "invalid API key", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractAPIKey returns the client-presented key from the Authorization
// Bearer scheme (case-insensitive per RFC 7235) or the X-API-Key header.
func extractAPIKey(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) >= len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}
