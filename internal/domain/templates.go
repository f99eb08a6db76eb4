package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	defaultRestSeconds      = 90
	defaultRecommendedWeeks = 8
	defaultExerciseName     = "Exercise"
)

// TemplateRepository captures persistence for the template aggregate. Tree
// writes are transactional: CreateTree and ReplaceTree either persist the
// whole day/exercise tree or leave the store untouched.
type TemplateRepository interface {
	ListSummaries(ctx context.Context, userID string) ([]TemplateSummary, error)
	GetActive(ctx context.Context, userID string) (*TemplateDetail, error)
	GetByID(ctx context.Context, id, userID string) (*TemplateDetail, error)
	CreateTree(ctx context.Context, tpl TemplateDetail) error
	ReplaceTree(ctx context.Context, tpl TemplateDetail) (*TemplateDetail, error)
	Activate(ctx context.Context, id, userID string, at time.Time) (bool, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// TemplateService manages reusable multi-day workout plans.
type TemplateService struct {
	repo TemplateRepository
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(repo TemplateRepository) *TemplateService {
	return &TemplateService{repo: repo}
}

// TemplateInput is the payload for creating or replacing a template.
type TemplateInput struct {
	Title            string
	Description      *string
	RecommendedWeeks *int
	Days             []DayInput
}

// DayInput is one training day in a template payload.
type DayInput struct {
	Title     string
	DayOfWeek *int
	Cardio    *CardioSession
	Exercises []ExerciseInput
}

// ExerciseInput is one movement in a template payload.
type ExerciseInput struct {
	Name           string
	Type           string
	Description    string
	Notes          string
	RestSeconds    *int
	IsStandardSets *bool
	Sets           []TemplateSet
	Cardio         *CardioSession
}

// ListSummaries returns the user's templates, active first, then most
// recently updated.
func (s *TemplateService) ListSummaries(ctx context.Context, userID string) ([]TemplateSummary, error) {
	return s.repo.ListSummaries(ctx, userID)
}

// GetActive returns the user's active template or nil.
func (s *TemplateService) GetActive(ctx context.Context, userID string) (*TemplateDetail, error) {
	return s.repo.GetActive(ctx, userID)
}

// GetByID returns the template or nil when absent or owned by someone else.
func (s *TemplateService) GetByID(ctx context.Context, id, userID string) (*TemplateDetail, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// Create allocates ids for the whole tree, persists it in one transaction and
// returns the stored detail re-read from the database so defaults and
// coercions applied by the store are reflected.
func (s *TemplateService) Create(ctx context.Context, userID string, input TemplateInput) (*TemplateDetail, error) {
	now := time.Now().UTC()
	tpl := buildTemplateTree(uuid.NewString(), userID, input, now)
	tpl.CreatedAt = now

	if err := s.repo.CreateTree(ctx, tpl); err != nil {
		return nil, err
	}

	detail, err := s.repo.GetByID(ctx, tpl.ID, userID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("template %s missing after create", tpl.ID)
	}
	return detail, nil
}

// Update replaces the template's day/exercise tree with the provided one,
// generating fresh ids for every node. Returns nil when the template does not
// exist for the user.
func (s *TemplateService) Update(ctx context.Context, id, userID string, input TemplateInput) (*TemplateDetail, error) {
	tpl := buildTemplateTree(id, userID, input, time.Now().UTC())
	return s.repo.ReplaceTree(ctx, tpl)
}

// Activate marks the template active and every other template of the user
// inactive. Reports whether the target row ended up active.
func (s *TemplateService) Activate(ctx context.Context, id, userID string) (bool, error) {
	if id == "" || userID == "" {
		return false, nil
	}
	return s.repo.Activate(ctx, id, userID, time.Now().UTC())
}

// Delete removes the template; days and exercises go with it via cascade.
func (s *TemplateService) Delete(ctx context.Context, id, userID string) (bool, error) {
	return s.repo.Delete(ctx, id, userID)
}

// buildTemplateTree normalizes the input into a fully-identified aggregate:
// fresh uuids per node, zero-based ordinals in input order, and stored
// defaults applied.
func buildTemplateTree(id, userID string, input TemplateInput, now time.Time) TemplateDetail {
	tpl := TemplateDetail{
		ID:               id,
		UserID:           userID,
		Title:            input.Title,
		Description:      input.Description,
		RecommendedWeeks: defaultRecommendedWeeks,
		UpdatedAt:        now,
		Days:             make([]TemplateDay, 0, len(input.Days)),
	}
	if input.RecommendedWeeks != nil {
		tpl.RecommendedWeeks = *input.RecommendedWeeks
	}

	for i, day := range input.Days {
		out := TemplateDay{
			ID:        uuid.NewString(),
			Title:     day.Title,
			DayOrder:  i,
			DayOfWeek: day.DayOfWeek,
			Cardio:    day.Cardio,
			Exercises: make([]TemplateExercise, 0, len(day.Exercises)),
		}

		for j, ex := range day.Exercises {
			out.Exercises = append(out.Exercises, normalizeExercise(ex, j))
		}
		tpl.Days = append(tpl.Days, out)
	}
	return tpl
}

func normalizeExercise(ex ExerciseInput, order int) TemplateExercise {
	name := ex.Name
	if name == "" {
		name = defaultExerciseName
	}

	kind := ExerciseTypeStrength
	if ex.Type == string(ExerciseTypeCardio) {
		kind = ExerciseTypeCardio
	}

	rest := defaultRestSeconds
	if ex.RestSeconds != nil && *ex.RestSeconds > 0 {
		rest = *ex.RestSeconds
	}

	// Standard sets unless the client explicitly opted out.
	standard := ex.IsStandardSets == nil || *ex.IsStandardSets

	sets := ex.Sets
	if sets == nil {
		sets = []TemplateSet{}
	}

	return TemplateExercise{
		ID:             uuid.NewString(),
		Name:           name,
		Type:           kind,
		Description:    ex.Description,
		Notes:          ex.Notes,
		RestSeconds:    rest,
		ExerciseOrder:  order,
		IsStandardSets: standard,
		Sets:           sets,
		Cardio:         ex.Cardio,
	}
}
