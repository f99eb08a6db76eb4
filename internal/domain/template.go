package domain

import "time"

// ExerciseType distinguishes strength movements from cardio sessions.
type ExerciseType string

const (
	ExerciseTypeStrength ExerciseType = "strength"
	ExerciseTypeCardio   ExerciseType = "cardio"
)

// TemplateSummary is the list view of a template with aggregate counts.
type TemplateSummary struct {
	ID             string
	Title          string
	Description    *string
	IsActive       bool
	DaysCount      int
	ExercisesCount int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TemplateDetail is the full template aggregate: template, ordered days,
// ordered exercises per day.
type TemplateDetail struct {
	ID               string
	UserID           string
	Title            string
	Description      *string
	IsActive         bool
	RecommendedWeeks int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ActivatedAt      *time.Time
	Days             []TemplateDay
}

// TemplateDay is one training day within a template.
type TemplateDay struct {
	ID        string
	Title     string
	DayOrder  int
	DayOfWeek *int
	Cardio    *CardioSession
	Exercises []TemplateExercise
}

// TemplateExercise is a named movement with an ordered set list. Sets and the
// optional cardio payload are stored as serialized JSON.
type TemplateExercise struct {
	ID             string
	Name           string
	Type           ExerciseType
	Description    string
	Notes          string
	RestSeconds    int
	ExerciseOrder  int
	IsStandardSets bool
	Sets           []TemplateSet
	Cardio         *CardioSession
}

// TemplateSet is one unit of work within an exercise. Reps is free text so
// ranges like "8-12" survive round trips.
type TemplateSet struct {
	Reps     string   `json:"reps"`
	Weight   *float64 `json:"weight,omitempty"`
	RPE      *float64 `json:"rpe,omitempty"`
	Notes    string   `json:"notes,omitempty"`
	IsWarmup bool     `json:"isWarmup,omitempty"`
}

// CardioSession describes a cardio block attached to a day or an exercise.
type CardioSession struct {
	Modality        string `json:"modality,omitempty"`
	DurationMinutes int    `json:"durationMinutes"`
	Intensity       string `json:"intensity"`
	Notes           string `json:"notes,omitempty"`
}
