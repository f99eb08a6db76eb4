package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WorkoutRepository captures persistence operations for workout logs. Lookups
// are owner-scoped: another user's id behaves like a missing row.
type WorkoutRepository interface {
	ListByUser(ctx context.Context, userID string) ([]WorkoutLog, error)
	Get(ctx context.Context, id, userID string) (*WorkoutLog, error)
	Create(ctx context.Context, log WorkoutLog) error
	Update(ctx context.Context, id, userID string, patch WorkoutPatch) (*WorkoutLog, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
	StatsByUser(ctx context.Context, userID string) (WorkoutStats, error)
}

// WorkoutService provides per-user CRUD over workout logs.
type WorkoutService struct {
	repo WorkoutRepository
}

// NewWorkoutService constructs a WorkoutService.
func NewWorkoutService(repo WorkoutRepository) *WorkoutService {
	return &WorkoutService{repo: repo}
}

// CreateWorkoutInput captures the payload from the API layer.
type CreateWorkoutInput struct {
	WorkoutID       string
	WorkoutName     string
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int
	Exercises       []ExerciseData
	UserWeight      *float64
}

// List returns the user's sessions ordered by end time, most recent first.
func (s *WorkoutService) List(ctx context.Context, userID string) ([]WorkoutLog, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns the session or nil when absent or owned by someone else.
func (s *WorkoutService) Get(ctx context.Context, id, userID string) (*WorkoutLog, error) {
	return s.repo.Get(ctx, id, userID)
}

// Create persists a new session with a fresh id.
func (s *WorkoutService) Create(ctx context.Context, userID string, input CreateWorkoutInput) (*WorkoutLog, error) {
	log := WorkoutLog{
		ID:              uuid.NewString(),
		UserID:          userID,
		WorkoutID:       input.WorkoutID,
		WorkoutName:     input.WorkoutName,
		StartTime:       input.StartTime.UTC(),
		EndTime:         input.EndTime.UTC(),
		DurationSeconds: input.DurationSeconds,
		Exercises:       input.Exercises,
		UserWeight:      input.UserWeight,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, err
	}
	return &log, nil
}

// Update overwrites only the supplied fields and returns the stored row, or
// nil when the session does not exist for the user.
func (s *WorkoutService) Update(ctx context.Context, id, userID string, patch WorkoutPatch) (*WorkoutLog, error) {
	if patch.IsEmpty() {
		return s.repo.Get(ctx, id, userID)
	}
	return s.repo.Update(ctx, id, userID, patch)
}

// Delete removes the session and reports whether a row was removed.
func (s *WorkoutService) Delete(ctx context.Context, id, userID string) (bool, error) {
	return s.repo.Delete(ctx, id, userID)
}

// Stats returns total, current-week and current-month session counts.
func (s *WorkoutService) Stats(ctx context.Context, userID string) (WorkoutStats, error) {
	return s.repo.StatsByUser(ctx, userID)
}
