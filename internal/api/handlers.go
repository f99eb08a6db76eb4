// Package api exposes the JSON-over-HTTP surface of the galaxy-fit backend.
package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"example.com/galaxyfit/internal/auth"
	"example.com/galaxyfit/internal/domain"
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	identity    *domain.IdentityService
	workouts    *domain.WorkoutService
	templates   *domain.TemplateService
	versionFile string
}

// NewHandler builds a Handler.
func NewHandler(identity *domain.IdentityService, workouts *domain.WorkoutService, templates *domain.TemplateService, versionFile string) *Handler {
	return &Handler{
		identity:    identity,
		workouts:    workouts,
		templates:   templates,
		versionFile: versionFile,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/auth/signup", h.signup)
	mux.HandleFunc("/auth/login", h.login)
	mux.HandleFunc("/auth/me", h.me)
	mux.HandleFunc("/workouts", h.handleWorkouts)
	mux.HandleFunc("/workouts/stats", h.workoutStats)
	mux.HandleFunc("/workouts/", h.handleWorkoutByID)
	mux.HandleFunc("/templates", h.handleTemplates)
	mux.HandleFunc("/templates/active", h.activeTemplate)
	mux.HandleFunc("/templates/", h.handleTemplateByID)
	mux.HandleFunc("/health", h.health)
	mux.HandleFunc("/updates/version.json", h.versionInfo)
	mux.HandleFunc("/", h.notFound)
}

// health reports a simple OK status plus the server clock.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found")
}

// versionInfo serves the OTA update descriptor from disk. This endpoint does
// not use the response envelope.
func (h *Handler) versionInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	raw, err := os.ReadFile(h.versionFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Version file not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read version info"})
		return
	}

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read version info"})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// claimsFrom extracts bearer claims, writing a 401 when they are missing.
func claimsFrom(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok || claims.UserID == "" {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return claims, true
}
