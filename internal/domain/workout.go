package domain

import "time"

// WorkoutLog is a completed training session owned by a single user.
type WorkoutLog struct {
	ID              string
	UserID          string
	WorkoutID       string
	WorkoutName     string
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int
	Exercises       []ExerciseData
	UserWeight      *float64
	CreatedAt       time.Time
}

// ExerciseData is one exercise performed during a session. The slice is
// persisted as a JSON payload, so the tags define the storage format.
type ExerciseData struct {
	ExerciseID   string    `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	Sets         []SetData `json:"sets"`
}

// SetData is one performed set within an exercise.
type SetData struct {
	SetNumber int     `json:"set_number"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
}

// WorkoutStats aggregates session counts for a user. Week and month
// boundaries are computed against the store's clock.
type WorkoutStats struct {
	TotalWorkouts int
	ThisWeek      int
	ThisMonth     int
}

// WorkoutPatch describes a partial update. Nil fields leave the stored column
// untouched.
type WorkoutPatch struct {
	WorkoutID       *string
	WorkoutName     *string
	StartTime       *time.Time
	EndTime         *time.Time
	DurationSeconds *int
	Exercises       []ExerciseData
	UserWeight      *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p WorkoutPatch) IsEmpty() bool {
	return p.WorkoutID == nil && p.WorkoutName == nil && p.StartTime == nil &&
		p.EndTime == nil && p.DurationSeconds == nil && p.Exercises == nil &&
		p.UserWeight == nil
}
