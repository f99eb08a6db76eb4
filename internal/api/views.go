package api

import (
	"time"

	"example.com/galaxyfit/internal/domain"
)

// Users and workout logs are exposed with snake_case fields, templates with
// camelCase. The split mirrors what the mobile client already consumes.

type userView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login"`
}

func toUserView(user domain.User) userView {
	return userView{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		LastLogin: user.LastLogin,
	}
}

type authView struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

type workoutView struct {
	ID              string                `json:"id"`
	UserID          string                `json:"user_id"`
	WorkoutID       string                `json:"workout_id"`
	WorkoutName     string                `json:"workout_name"`
	StartTime       time.Time             `json:"start_time"`
	EndTime         time.Time             `json:"end_time"`
	DurationSeconds int                   `json:"duration_seconds"`
	Exercises       []domain.ExerciseData `json:"exercises"`
	UserWeight      *float64              `json:"user_weight"`
	CreatedAt       time.Time             `json:"created_at"`
}

func toWorkoutView(log domain.WorkoutLog) workoutView {
	return workoutView{
		ID:              log.ID,
		UserID:          log.UserID,
		WorkoutID:       log.WorkoutID,
		WorkoutName:     log.WorkoutName,
		StartTime:       log.StartTime,
		EndTime:         log.EndTime,
		DurationSeconds: log.DurationSeconds,
		Exercises:       log.Exercises,
		UserWeight:      log.UserWeight,
		CreatedAt:       log.CreatedAt,
	}
}

type workoutStatsView struct {
	TotalWorkouts int `json:"totalWorkouts"`
	ThisWeek      int `json:"thisWeek"`
	ThisMonth     int `json:"thisMonth"`
}

type templateSummaryView struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	IsActive       bool      `json:"isActive"`
	DaysCount      int       `json:"daysCount"`
	ExercisesCount int       `json:"exercisesCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toTemplateSummaryView(s domain.TemplateSummary) templateSummaryView {
	return templateSummaryView{
		ID:             s.ID,
		Title:          s.Title,
		Description:    s.Description,
		IsActive:       s.IsActive,
		DaysCount:      s.DaysCount,
		ExercisesCount: s.ExercisesCount,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type templateDetailView struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      *string           `json:"description"`
	IsActive         bool              `json:"isActive"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	ActivatedAt      *time.Time        `json:"activatedAt"`
	RecommendedWeeks int               `json:"recommendedWeeks"`
	Days             []templateDayView `json:"days"`
}

type templateDayView struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	DayOrder  int                    `json:"dayOrder"`
	DayOfWeek *int                   `json:"dayOfWeek"`
	Cardio    *domain.CardioSession  `json:"cardio"`
	Exercises []templateExerciseView `json:"exercises"`
}

type templateExerciseView struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Type           string                `json:"type"`
	Description    string                `json:"description"`
	Notes          string                `json:"notes"`
	RestSeconds    int                   `json:"restSeconds"`
	IsStandardSets bool                  `json:"isStandardSets"`
	Sets           []domain.TemplateSet  `json:"sets"`
	Cardio         *domain.CardioSession `json:"cardio,omitempty"`
}

func toTemplateDetailView(tpl domain.TemplateDetail) templateDetailView {
	days := make([]templateDayView, 0, len(tpl.Days))
	for _, day := range tpl.Days {
		exercises := make([]templateExerciseView, 0, len(day.Exercises))
		for _, ex := range day.Exercises {
			exercises = append(exercises, templateExerciseView{
				ID:             ex.ID,
				Name:           ex.Name,
				Type:           string(ex.Type),
				Description:    ex.Description,
				Notes:          ex.Notes,
				RestSeconds:    ex.RestSeconds,
				IsStandardSets: ex.IsStandardSets,
				Sets:           ex.Sets,
				Cardio:         ex.Cardio,
			})
		}
		days = append(days, templateDayView{
			ID:        day.ID,
			Title:     day.Title,
			DayOrder:  day.DayOrder,
			DayOfWeek: day.DayOfWeek,
			Cardio:    day.Cardio,
			Exercises: exercises,
		})
	}

	return templateDetailView{
		ID:               tpl.ID,
		Title:            tpl.Title,
		Description:      tpl.Description,
		IsActive:         tpl.IsActive,
		CreatedAt:        tpl.CreatedAt,
		UpdatedAt:        tpl.UpdatedAt,
		ActivatedAt:      tpl.ActivatedAt,
		RecommendedWeeks: tpl.RecommendedWeeks,
		Days:             days,
	}
}
