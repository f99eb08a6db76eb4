package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/galaxyfit/internal/domain"
	"example.com/galaxyfit/internal/observability"
)

// TemplateRepository provides Postgres-backed persistence for the workout
// template aggregate: template rows, their ordered days and per-day ordered
// exercises.
//
// The optional recommended_weeks and activated_at columns may be absent in
// stores that predate their migrations. The first statement that fails with
// an undefined-column error flips the matching capability flag and is retried
// once without the column; subsequent statements skip it outright.
type TemplateRepository struct {
	pool *pgxpool.Pool

	hasRecommendedWeeks atomic.Bool
	hasActivatedAt      atomic.Bool
}

// NewTemplateRepository constructs a TemplateRepository. Both optional
// columns are assumed present until a statement proves otherwise.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	r := &TemplateRepository{pool: pool}
	r.hasRecommendedWeeks.Store(true)
	r.hasActivatedAt.Store(true)
	return r
}

// dropMissingColumn inspects err for undefined-column semantics on one of the
// optional columns. When it matches, the capability flag is cleared and the
// caller retries with the reduced statement.
func (r *TemplateRepository) dropMissingColumn(err error) bool {
	switch {
	case r.hasRecommendedWeeks.Load() && missingColumn(err, "recommended_weeks"):
		r.hasRecommendedWeeks.Store(false)
		return true
	case r.hasActivatedAt.Load() && missingColumn(err, "activated_at"):
		r.hasActivatedAt.Store(false)
		return true
	}
	return false
}

// ListSummaries returns one row per template with day and exercise counts,
// active first, then most recently updated.
func (r *TemplateRepository) ListSummaries(ctx context.Context, userID string) ([]domain.TemplateSummary, error) {
	const query = `SELECT
        t.id, t.title, t.description, t.is_active, t.created_at, t.updated_at,
        (SELECT COUNT(*) FROM workout_days d WHERE d.template_id = t.id) AS days_count,
        (SELECT COUNT(*) FROM workout_days d
            JOIN workout_exercises e ON e.day_id = d.id
            WHERE d.template_id = t.id) AS exercises_count
        FROM workout_templates t
        WHERE t.user_id = $1
        ORDER BY t.is_active DESC, t.updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]domain.TemplateSummary, 0)
	for rows.Next() {
		var s domain.TemplateSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.IsActive,
			&s.CreatedAt, &s.UpdatedAt, &s.DaysCount, &s.ExercisesCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetActive returns the user's active template with its full tree, or nil.
func (r *TemplateRepository) GetActive(ctx context.Context, userID string) (*domain.TemplateDetail, error) {
	tpl, err := r.fetchTemplate(ctx, r.pool, `user_id = $1 AND is_active`, userID)
	if err != nil || tpl == nil {
		return nil, err
	}
	if err := loadTemplateTree(ctx, r.pool, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// GetByID returns the template scoped to its owner with its full tree, or nil.
func (r *TemplateRepository) GetByID(ctx context.Context, id, userID string) (*domain.TemplateDetail, error) {
	tpl, err := r.fetchTemplate(ctx, r.pool, `id = $1 AND user_id = $2`, id, userID)
	if err != nil || tpl == nil {
		return nil, err
	}
	if err := loadTemplateTree(ctx, r.pool, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// templateColumns builds the select list, substituting typed NULLs for
// columns the store is known to lack so the scan shape stays fixed.
func (r *TemplateRepository) templateColumns() string {
	weeks := "recommended_weeks"
	if !r.hasRecommendedWeeks.Load() {
		weeks = "NULL::int AS recommended_weeks"
	}
	activated := "activated_at"
	if !r.hasActivatedAt.Load() {
		activated = "NULL::timestamptz AS activated_at"
	}
	return `id, user_id, title, description, is_active, created_at, updated_at, ` +
		weeks + `, ` + activated
}

// fetchTemplate reads a single template row. Undefined-column failures on the
// optional columns clear the matching capability flag and retry once. Only
// safe outside a transaction: a failed statement aborts a Postgres
// transaction, so in-transaction callers use fetchTemplateInTx.
func (r *TemplateRepository) fetchTemplate(ctx context.Context, q queryer, where string, args ...any) (*domain.TemplateDetail, error) {
	for {
		tpl, err := r.fetchTemplateOnce(ctx, q, where, args...)
		if err != nil {
			if r.dropMissingColumn(err) {
				continue
			}
			return nil, err
		}
		return tpl, nil
	}
}

// fetchTemplateInTx reads a single template row inside tx, running every
// attempt under a savepoint so an undefined-column failure can be retried
// without aborting the enclosing transaction.
func (r *TemplateRepository) fetchTemplateInTx(ctx context.Context, tx pgx.Tx, where string, args ...any) (*domain.TemplateDetail, error) {
	for {
		sub, err := tx.Begin(ctx)
		if err != nil {
			return nil, err
		}

		tpl, err := r.fetchTemplateOnce(ctx, sub, where, args...)
		if err != nil {
			_ = sub.Rollback(ctx)
			if r.dropMissingColumn(err) {
				continue
			}
			return nil, err
		}
		if err := sub.Commit(ctx); err != nil {
			return nil, err
		}
		return tpl, nil
	}
}

func (r *TemplateRepository) fetchTemplateOnce(ctx context.Context, q queryer, where string, args ...any) (*domain.TemplateDetail, error) {
	query := `SELECT ` + r.templateColumns() + ` FROM workout_templates WHERE ` + where
	row := q.QueryRow(ctx, query, args...)

	var tpl domain.TemplateDetail
	var weeks *int
	err := row.Scan(&tpl.ID, &tpl.UserID, &tpl.Title, &tpl.Description,
		&tpl.IsActive, &tpl.CreatedAt, &tpl.UpdatedAt, &weeks, &tpl.ActivatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	tpl.RecommendedWeeks = defaultWeeks
	if weeks != nil {
		tpl.RecommendedWeeks = *weeks
	}
	return &tpl, nil
}

const defaultWeeks = 8

// loadTemplateTree fills in the ordered days and, per day, the ordered
// exercises with their decoded set lists and cardio payloads.
func loadTemplateTree(ctx context.Context, q queryer, tpl *domain.TemplateDetail) error {
	rows, err := q.Query(ctx,
		`SELECT id, title, day_order, day_of_week, cardio_data
         FROM workout_days WHERE template_id = $1 ORDER BY day_order`,
		tpl.ID)
	if err != nil {
		return err
	}

	days := make([]domain.TemplateDay, 0)
	for rows.Next() {
		var day domain.TemplateDay
		var cardio *string
		if err := rows.Scan(&day.ID, &day.Title, &day.DayOrder, &day.DayOfWeek, &cardio); err != nil {
			rows.Close()
			return err
		}
		day.Cardio, err = decodeCardio(cardio)
		if err != nil {
			rows.Close()
			return fmt.Errorf("decode cardio payload for day %s: %w", day.ID, err)
		}
		days = append(days, day)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range days {
		exercises, err := loadExercises(ctx, q, days[i].ID)
		if err != nil {
			return err
		}
		days[i].Exercises = exercises
	}

	tpl.Days = days
	return nil
}

func loadExercises(ctx context.Context, q queryer, dayID string) ([]domain.TemplateExercise, error) {
	rows, err := q.Query(ctx,
		`SELECT id, name, description, notes, rest_seconds, exercise_order,
                is_standard_sets, sets_data, exercise_type, cardio_data
         FROM workout_exercises WHERE day_id = $1 ORDER BY exercise_order`,
		dayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]domain.TemplateExercise, 0)
	for rows.Next() {
		var ex domain.TemplateExercise
		var kind string
		var setsData string
		var cardio *string
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.Description, &ex.Notes,
			&ex.RestSeconds, &ex.ExerciseOrder, &ex.IsStandardSets,
			&setsData, &kind, &cardio); err != nil {
			return nil, err
		}

		ex.Type = domain.ExerciseType(kind)
		if ex.Type == "" {
			ex.Type = domain.ExerciseTypeStrength
		}
		ex.Sets, err = decodeSets(setsData)
		if err != nil {
			return nil, fmt.Errorf("decode sets payload for exercise %s: %w", ex.ID, err)
		}
		ex.Cardio, err = decodeCardio(cardio)
		if err != nil {
			return nil, fmt.Errorf("decode cardio payload for exercise %s: %w", ex.ID, err)
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

// CreateTree inserts the template row and its full day/exercise tree inside
// one transaction. Any failure rolls the whole tree back.
func (r *TemplateRepository) CreateTree(ctx context.Context, tpl domain.TemplateDetail) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = r.insertTemplate(ctx, tx, tpl); err != nil {
		return err
	}
	if err = insertDays(ctx, tx, tpl.ID, tpl.Days); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordTemplatePersisted(tpl.UpdatedAt)
	return nil
}

// insertTemplate writes the template row, inactive by default. The statement
// runs under a savepoint so an undefined-column failure on recommended_weeks
// can be retried without aborting the enclosing transaction.
func (r *TemplateRepository) insertTemplate(ctx context.Context, tx pgx.Tx, tpl domain.TemplateDetail) error {
	for {
		sub, err := tx.Begin(ctx)
		if err != nil {
			return err
		}

		if r.hasRecommendedWeeks.Load() {
			_, err = sub.Exec(ctx,
				`INSERT INTO workout_templates
                 (id, user_id, title, description, is_active, recommended_weeks, created_at, updated_at)
                 VALUES ($1,$2,$3,$4,FALSE,$5,$6,$7)`,
				tpl.ID, tpl.UserID, tpl.Title, tpl.Description,
				tpl.RecommendedWeeks, tpl.CreatedAt, tpl.UpdatedAt)
		} else {
			_, err = sub.Exec(ctx,
				`INSERT INTO workout_templates
                 (id, user_id, title, description, is_active, created_at, updated_at)
                 VALUES ($1,$2,$3,$4,FALSE,$5,$6)`,
				tpl.ID, tpl.UserID, tpl.Title, tpl.Description,
				tpl.CreatedAt, tpl.UpdatedAt)
		}
		if err != nil {
			_ = sub.Rollback(ctx)
			if r.dropMissingColumn(err) {
				continue
			}
			return err
		}
		return sub.Commit(ctx)
	}
}

func insertDays(ctx context.Context, tx pgx.Tx, templateID string, days []domain.TemplateDay) error {
	for _, day := range days {
		cardio, err := encodeCardio(day.Cardio)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO workout_days (id, template_id, title, day_order, day_of_week, cardio_data)
             VALUES ($1,$2,$3,$4,$5,$6)`,
			day.ID, templateID, day.Title, day.DayOrder, day.DayOfWeek, cardio)
		if err != nil {
			return err
		}

		for _, ex := range day.Exercises {
			setsData, err := encodeSets(ex.Sets)
			if err != nil {
				return err
			}
			exCardio, err := encodeCardio(ex.Cardio)
			if err != nil {
				return err
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO workout_exercises
                 (id, day_id, name, description, notes, rest_seconds, exercise_order,
                  is_standard_sets, sets_data, exercise_type, cardio_data)
                 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
				ex.ID, day.ID, ex.Name, ex.Description, ex.Notes, ex.RestSeconds,
				ex.ExerciseOrder, ex.IsStandardSets, setsData, string(ex.Type), exCardio)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// ReplaceTree swaps the template's entire day/exercise tree for the provided
// one inside a single transaction: update the template row, delete the old
// days (exercises cascade), insert the replacement tree, then read the stored
// aggregate back before committing. Returns nil without mutating when the
// template does not exist for the user.
func (r *TemplateRepository) ReplaceTree(ctx context.Context, tpl domain.TemplateDetail) (*domain.TemplateDetail, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE workout_templates SET title = $3, description = $4, updated_at = $5
         WHERE id = $1 AND user_id = $2`,
		tpl.ID, tpl.UserID, tpl.Title, tpl.Description, tpl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		return nil, nil
	}

	if _, err = tx.Exec(ctx, `DELETE FROM workout_days WHERE template_id = $1`, tpl.ID); err != nil {
		return nil, err
	}
	if err = insertDays(ctx, tx, tpl.ID, tpl.Days); err != nil {
		return nil, err
	}

	var detail *domain.TemplateDetail
	detail, err = r.fetchTemplateInTx(ctx, tx, `id = $1 AND user_id = $2`, tpl.ID, tpl.UserID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		err = fmt.Errorf("template %s vanished during replace", tpl.ID)
		return nil, err
	}
	if err = loadTemplateTree(ctx, tx, detail); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	observability.RecordTemplatePersisted(tpl.UpdatedAt)
	return detail, nil
}

// Activate flips is_active for every template the user owns in one statement,
// so concurrent activations cannot leave two rows active. Reports whether the
// target row ended up active.
func (r *TemplateRepository) Activate(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	for {
		var query string
		if r.hasActivatedAt.Load() {
			query = `UPDATE workout_templates
                SET is_active = (id = $1),
                    updated_at = CASE WHEN id = $1 THEN $2 ELSE updated_at END,
                    activated_at = CASE WHEN id = $1 AND (activated_at IS NULL OR NOT is_active)
                                        THEN $2 ELSE activated_at END
                WHERE user_id = $3`
		} else {
			query = `UPDATE workout_templates
                SET is_active = (id = $1),
                    updated_at = CASE WHEN id = $1 THEN $2 ELSE updated_at END
                WHERE user_id = $3`
		}

		if _, err := r.pool.Exec(ctx, query, id, at, userID); err != nil {
			if r.dropMissingColumn(err) {
				continue
			}
			return false, err
		}
		break
	}

	var active bool
	err := r.pool.QueryRow(ctx,
		`SELECT is_active FROM workout_templates WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if active {
		observability.RecordTemplateActivated()
	}
	return active, nil
}

// Delete removes the template; days and exercises follow via FK cascade.
func (r *TemplateRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM workout_templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
