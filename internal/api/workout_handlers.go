package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"example.com/galaxyfit/internal/domain"
)

type createWorkoutRequest struct {
	WorkoutID       string                `json:"workout_id"`
	WorkoutName     string                `json:"workout_name"`
	StartTime       string                `json:"start_time"`
	EndTime         string                `json:"end_time"`
	DurationSeconds int                   `json:"duration_seconds"`
	Exercises       []domain.ExerciseData `json:"exercises"`
	UserWeight      *float64              `json:"user_weight"`
}

type updateWorkoutRequest struct {
	WorkoutID       *string               `json:"workout_id"`
	WorkoutName     *string               `json:"workout_name"`
	StartTime       *string               `json:"start_time"`
	EndTime         *string               `json:"end_time"`
	DurationSeconds *int                  `json:"duration_seconds"`
	Exercises       []domain.ExerciseData `json:"exercises"`
	UserWeight      *float64              `json:"user_weight"`
}

func (h *Handler) handleWorkouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listWorkouts(w, r)
	case http.MethodPost:
		h.createWorkout(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	logs, err := h.workouts.List(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("[workouts] list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	views := make([]workoutView, 0, len(logs))
	for _, l := range logs {
		views = append(views, toWorkoutView(l))
	}
	writeData(w, http.StatusOK, views)
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse body")
		return
	}
	if req.WorkoutID == "" || req.WorkoutName == "" || req.StartTime == "" ||
		req.EndTime == "" || req.Exercises == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_time")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_time")
		return
	}

	workout, err := h.workouts.Create(r.Context(), claims.UserID, domain.CreateWorkoutInput{
		WorkoutID:       req.WorkoutID,
		WorkoutName:     req.WorkoutName,
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: req.DurationSeconds,
		Exercises:       req.Exercises,
		UserWeight:      req.UserWeight,
	})
	if err != nil {
		log.Printf("[workouts] create failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeData(w, http.StatusCreated, toWorkoutView(*workout))
}

func (h *Handler) workoutStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	stats, err := h.workouts.Stats(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("[workouts] stats failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeData(w, http.StatusOK, workoutStatsView{
		TotalWorkouts: stats.TotalWorkouts,
		ThisWeek:      stats.ThisWeek,
		ThisMonth:     stats.ThisMonth,
	})
}

func (h *Handler) handleWorkoutByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/workouts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getWorkout(w, r, id, claims.UserID)
	case http.MethodPut:
		h.updateWorkout(w, r, id, claims.UserID)
	case http.MethodDelete:
		h.deleteWorkout(w, r, id, claims.UserID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request, id, userID string) {
	workout, err := h.workouts.Get(r.Context(), id, userID)
	if err != nil {
		log.Printf("[workouts] get failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if workout == nil {
		writeError(w, http.StatusNotFound, "Workout not found")
		return
	}
	writeData(w, http.StatusOK, toWorkoutView(*workout))
}

func (h *Handler) updateWorkout(w http.ResponseWriter, r *http.Request, id, userID string) {
	var req updateWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Unable to parse body")
		return
	}

	patch := domain.WorkoutPatch{
		WorkoutID:       req.WorkoutID,
		WorkoutName:     req.WorkoutName,
		DurationSeconds: req.DurationSeconds,
		Exercises:       req.Exercises,
		UserWeight:      req.UserWeight,
	}
	if req.StartTime != nil {
		start, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_time")
			return
		}
		patch.StartTime = &start
	}
	if req.EndTime != nil {
		end, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_time")
			return
		}
		patch.EndTime = &end
	}

	workout, err := h.workouts.Update(r.Context(), id, userID, patch)
	if err != nil {
		log.Printf("[workouts] update failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if workout == nil {
		writeError(w, http.StatusNotFound, "Workout not found")
		return
	}
	writeData(w, http.StatusOK, toWorkoutView(*workout))
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request, id, userID string) {
	deleted, err := h.workouts.Delete(r.Context(), id, userID)
	if err != nil {
		log.Printf("[workouts] delete failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Workout not found")
		return
	}
	writeMessage(w, http.StatusOK, "Workout deleted successfully")
}
