//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/galaxyfit/internal/domain"
)

func startDatabase(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("galaxyfit"),
		postgrescontainer.WithUsername("galaxyfit"),
		postgrescontainer.WithPassword("galaxyfit"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func seedUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool) string {
	t.Helper()
	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewUserRepository(pool).Create(ctx, user))
	return user.ID
}

func planInput(title string) domain.TemplateInput {
	weight := 60.0
	return domain.TemplateInput{
		Title: title,
		Days: []domain.DayInput{
			{
				Title: "Push",
				Exercises: []domain.ExerciseInput{
					{
						Name: "Bench Press",
						Sets: []domain.TemplateSet{
							{Reps: "8-12", Weight: &weight},
							{Reps: "15", IsWarmup: true},
						},
					},
					{Name: "Overhead Press"},
				},
			},
			{
				Title:  "Cardio",
				Cardio: &domain.CardioSession{Modality: "row", DurationMinutes: 20, Intensity: "easy"},
			},
		},
	}
}

func TestTemplateTreeRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)
	userID := seedUser(t, ctx, pool)

	templates := domain.NewTemplateService(NewTemplateRepository(pool))

	created, err := templates.Create(ctx, userID, planInput("PPL"))
	require.NoError(t, err)
	require.False(t, created.IsActive)
	require.Equal(t, 8, created.RecommendedWeeks)
	require.Len(t, created.Days, 2)
	require.Len(t, created.Days[0].Exercises, 2)

	bench := created.Days[0].Exercises[0]
	require.Equal(t, "Bench Press", bench.Name)
	require.Equal(t, domain.ExerciseTypeStrength, bench.Type)
	require.Equal(t, 90, bench.RestSeconds)
	require.Len(t, bench.Sets, 2)
	require.True(t, bench.Sets[1].IsWarmup)

	cardioDay := created.Days[1]
	require.NotNil(t, cardioDay.Cardio)
	require.Equal(t, "row", cardioDay.Cardio.Modality)

	fetched, err := templates.GetByID(ctx, created.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, created.Days, fetched.Days)

	other := seedUser(t, ctx, pool)
	hidden, err := templates.GetByID(ctx, created.ID, other)
	require.NoError(t, err)
	require.Nil(t, hidden, "templates must not leak across users")
}

func TestActivationKeepsSingleActiveTemplate(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)
	userID := seedUser(t, ctx, pool)

	templates := domain.NewTemplateService(NewTemplateRepository(pool))

	first, err := templates.Create(ctx, userID, planInput("First"))
	require.NoError(t, err)
	second, err := templates.Create(ctx, userID, planInput("Second"))
	require.NoError(t, err)

	ok, err := templates.Activate(ctx, first.ID, userID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = templates.Activate(ctx, second.ID, userID)
	require.NoError(t, err)
	require.True(t, ok)

	var activeCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_templates WHERE user_id = $1 AND is_active`, userID).
		Scan(&activeCount))
	require.Equal(t, 1, activeCount)

	active, err := templates.GetActive(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, second.ID, active.ID)
	require.NotNil(t, active.ActivatedAt)

	ok, err = templates.Activate(ctx, uuid.NewString(), userID)
	require.NoError(t, err)
	require.False(t, ok, "activating an unknown template must not succeed")
}

func TestUpdateReplacesWholeTree(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)
	userID := seedUser(t, ctx, pool)

	templates := domain.NewTemplateService(NewTemplateRepository(pool))

	created, err := templates.Create(ctx, userID, planInput("Before"))
	require.NoError(t, err)
	oldDayID := created.Days[0].ID

	replacement := domain.TemplateInput{
		Title: "After",
		Days: []domain.DayInput{
			{Title: "Full Body", Exercises: []domain.ExerciseInput{{Name: "Deadlift"}}},
		},
	}
	updated, err := templates.Update(ctx, created.ID, userID, replacement)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, "After", updated.Title)
	require.Len(t, updated.Days, 1)
	require.NotEqual(t, oldDayID, updated.Days[0].ID)

	var orphanDays int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_days WHERE template_id = $1`, created.ID).
		Scan(&orphanDays))
	require.Equal(t, 1, orphanDays)

	missing, err := templates.Update(ctx, uuid.NewString(), userID, replacement)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDeleteTemplateCascades(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)
	userID := seedUser(t, ctx, pool)

	templates := domain.NewTemplateService(NewTemplateRepository(pool))

	created, err := templates.Create(ctx, userID, planInput("Doomed"))
	require.NoError(t, err)

	deleted, err := templates.Delete(ctx, created.ID, userID)
	require.NoError(t, err)
	require.True(t, deleted)

	var remaining int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_exercises e
         JOIN workout_days d ON d.id = e.day_id
         WHERE d.template_id = $1`, created.ID).
		Scan(&remaining))
	require.Equal(t, 0, remaining)

	again, err := templates.Delete(ctx, created.ID, userID)
	require.NoError(t, err)
	require.False(t, again)
}

func TestDriftedStoreWithoutOptionalColumns(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)

	_, err := pool.Exec(ctx,
		`ALTER TABLE workout_templates DROP COLUMN recommended_weeks, DROP COLUMN activated_at`)
	require.NoError(t, err)

	userID := seedUser(t, ctx, pool)

	// Fresh repository per step so each operation learns about the missing
	// columns from its own first failure instead of a cached flag.
	created, err := domain.NewTemplateService(NewTemplateRepository(pool)).
		Create(ctx, userID, planInput("Drifted"))
	require.NoError(t, err)
	require.Equal(t, 8, created.RecommendedWeeks)
	require.Nil(t, created.ActivatedAt)
	require.Len(t, created.Days, 2)

	fetched, err := domain.NewTemplateService(NewTemplateRepository(pool)).
		GetByID(ctx, created.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, 8, fetched.RecommendedWeeks)

	ok, err := domain.NewTemplateService(NewTemplateRepository(pool)).
		Activate(ctx, created.ID, userID)
	require.NoError(t, err)
	require.True(t, ok)

	active, err := domain.NewTemplateService(NewTemplateRepository(pool)).
		GetActive(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Nil(t, active.ActivatedAt)

	// The update's read-back runs inside the replace transaction, so the
	// missing-column retry must not abort it.
	updated, err := domain.NewTemplateService(NewTemplateRepository(pool)).
		Update(ctx, created.ID, userID, planInput("Drifted v2"))
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, "Drifted v2", updated.Title)
	require.Len(t, updated.Days, 2)
}

func TestWorkoutLifecycleAndStats(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)
	userID := seedUser(t, ctx, pool)

	workouts := domain.NewWorkoutService(NewWorkoutRepository(pool))

	end := time.Now().UTC()
	created, err := workouts.Create(ctx, userID, domain.CreateWorkoutInput{
		WorkoutID:       "push-day",
		WorkoutName:     "Push Day",
		StartTime:       end.Add(-time.Hour),
		EndTime:         end,
		DurationSeconds: 3600,
		Exercises: []domain.ExerciseData{
			{ExerciseID: "bench", ExerciseName: "Bench Press", Sets: []domain.SetData{
				{SetNumber: 1, Weight: 80, Reps: 8},
			}},
		},
	})
	require.NoError(t, err)

	name := "Push Day (heavy)"
	weight := 81.5
	updated, err := workouts.Update(ctx, created.ID, userID, domain.WorkoutPatch{
		WorkoutName: &name,
		UserWeight:  &weight,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, name, updated.WorkoutName)
	require.NotNil(t, updated.UserWeight)
	require.Equal(t, "push-day", updated.WorkoutID, "untouched columns must survive a partial update")
	require.Len(t, updated.Exercises, 1)

	stats, err := workouts.Stats(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalWorkouts)
	require.Equal(t, 1, stats.ThisMonth)

	deleted, err := workouts.Delete(ctx, created.ID, userID)
	require.NoError(t, err)
	require.True(t, deleted)

	logs, err := workouts.List(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, logs)
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
