package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/galaxyfit/internal/domain"
	"example.com/galaxyfit/internal/observability"
)

// WorkoutRepository provides Postgres-backed persistence for workout logs.
type WorkoutRepository struct {
	pool *pgxpool.Pool
}

// NewWorkoutRepository constructs a WorkoutRepository.
func NewWorkoutRepository(pool *pgxpool.Pool) *WorkoutRepository {
	return &WorkoutRepository{pool: pool}
}

const workoutColumns = `id, user_id, workout_id, workout_name, start_time, end_time,
        duration_seconds, exercises, user_weight, created_at`

// ListByUser returns the user's sessions, most recently finished first.
func (r *WorkoutRepository) ListByUser(ctx context.Context, userID string) ([]domain.WorkoutLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+workoutColumns+` FROM workout_logs WHERE user_id = $1 ORDER BY end_time DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.WorkoutLog, 0)
	for rows.Next() {
		log, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

// Get returns the session scoped to its owner, or nil when absent.
func (r *WorkoutRepository) Get(ctx context.Context, id, userID string) (*domain.WorkoutLog, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workout_logs WHERE id = $1 AND user_id = $2`,
		id, userID)

	log, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return log, nil
}

// Create persists a new session, serializing the exercise list as JSON.
func (r *WorkoutRepository) Create(ctx context.Context, log domain.WorkoutLog) error {
	exercises, err := encodeExercises(log.Exercises)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO workout_logs
        (id, user_id, workout_id, workout_name, start_time, end_time, duration_seconds, exercises, user_weight, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	_, err = r.pool.Exec(ctx, stmt,
		log.ID,
		log.UserID,
		log.WorkoutID,
		log.WorkoutName,
		log.StartTime,
		log.EndTime,
		log.DurationSeconds,
		exercises,
		log.UserWeight,
		log.CreatedAt,
	)
	if err != nil {
		return err
	}
	observability.RecordWorkoutPersisted(log.CreatedAt)
	return nil
}

// Update overwrites only the patched columns, then re-reads the row. Returns
// nil when the session does not exist for the user.
func (r *WorkoutRepository) Update(ctx context.Context, id, userID string, patch domain.WorkoutPatch) (*domain.WorkoutLog, error) {
	sets := make([]string, 0, 7)
	args := []interface{}{id, userID}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.WorkoutID != nil {
		add("workout_id", *patch.WorkoutID)
	}
	if patch.WorkoutName != nil {
		add("workout_name", *patch.WorkoutName)
	}
	if patch.StartTime != nil {
		add("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		add("end_time", *patch.EndTime)
	}
	if patch.DurationSeconds != nil {
		add("duration_seconds", *patch.DurationSeconds)
	}
	if patch.Exercises != nil {
		encoded, err := encodeExercises(patch.Exercises)
		if err != nil {
			return nil, err
		}
		add("exercises", encoded)
	}
	if patch.UserWeight != nil {
		add("user_weight", *patch.UserWeight)
	}

	if len(sets) == 0 {
		return r.Get(ctx, id, userID)
	}

	query := fmt.Sprintf(`UPDATE workout_logs SET %s WHERE id = $1 AND user_id = $2`,
		strings.Join(sets, ", "))
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return r.Get(ctx, id, userID)
}

// Delete removes the session and reports whether a row was removed.
func (r *WorkoutRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM workout_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// StatsByUser counts the user's sessions in one aggregate query. Week and
// month boundaries come from the database clock, not the caller's.
func (r *WorkoutRepository) StatsByUser(ctx context.Context, userID string) (domain.WorkoutStats, error) {
	const query = `SELECT
        COUNT(*),
        COUNT(*) FILTER (WHERE end_time >= date_trunc('week', now())),
        COUNT(*) FILTER (WHERE end_time >= date_trunc('month', now()))
        FROM workout_logs WHERE user_id = $1`

	var stats domain.WorkoutStats
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalWorkouts, &stats.ThisWeek, &stats.ThisMonth)
	if err != nil {
		return domain.WorkoutStats{}, err
	}
	return stats, nil
}

func scanWorkout(row pgx.Row) (*domain.WorkoutLog, error) {
	var log domain.WorkoutLog
	var exercises string
	err := row.Scan(&log.ID, &log.UserID, &log.WorkoutID, &log.WorkoutName,
		&log.StartTime, &log.EndTime, &log.DurationSeconds, &exercises,
		&log.UserWeight, &log.CreatedAt)
	if err != nil {
		return nil, err
	}

	log.Exercises, err = decodeExercises(exercises)
	if err != nil {
		return nil, fmt.Errorf("decode exercises for workout %s: %w", log.ID, err)
	}
	return &log, nil
}

func encodeExercises(exercises []domain.ExerciseData) (string, error) {
	if exercises == nil {
		exercises = []domain.ExerciseData{}
	}
	body, err := json.Marshal(exercises)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func decodeExercises(raw string) ([]domain.ExerciseData, error) {
	if raw == "" {
		return []domain.ExerciseData{}, nil
	}
	var exercises []domain.ExerciseData
	if err := json.Unmarshal([]byte(raw), &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}
