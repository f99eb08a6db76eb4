package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Skipper allows callers to bypass authentication for specific requests.
type Skipper func(r *http.Request) bool

// Middleware enforces bearer-token authentication on incoming requests.
type Middleware struct {
	Config  Config
	Skipper Skipper
}

// NewMiddleware constructs a middleware that skips the unauthenticated
// surface: health, signup, login, the OTA version file and metrics.
func NewMiddleware(cfg Config) Middleware {
	return Middleware{Config: cfg, Skipper: publicEndpoint}
}

func publicEndpoint(r *http.Request) bool {
	switch r.URL.Path {
	case "/health", "/auth/signup", "/auth/login", "/updates/version.json", "/metrics":
		return true
	}
	return false
}

// Wrap wraps an http.Handler with authentication. Failures are reported as
// the API's JSON envelope.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skipper != nil && m.Skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, "No token provided")
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "Token format invalid")
			return
		}

		claims, err := Parse(parts[1], m.Config)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				unauthorized(w, "Token expired")
				return
			}
			unauthorized(w, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
