package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var ErrProgressNotFound = errors.New("progress not found")

const progressColumns = `user_id, course_id, progress, completed_lectures, last_lecture_id,
	enrolled_at, updated_at, completed_at`

// ProgressMutator edits a locked progress record. A non-nil completion is
// stored in the same transaction.
type ProgressMutator func(p *models.UserCourseProgress) (*models.CourseCompletion, error)

type ProgressRepository struct {
	pool *pgxpool.Pool
}

func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

func scanProgress(row pgx.Row) (models.UserCourseProgress, error) {
	var p models.UserCourseProgress
	if err := row.Scan(
		&p.UserID,
		&p.CourseID,
		&p.Progress,
		&p.CompletedLectures,
		&p.LastLectureID,
		&p.EnrolledAt,
		&p.UpdatedAt,
		&p.CompletedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserCourseProgress{}, ErrProgressNotFound
		}
		return models.UserCourseProgress{}, err
	}
	if p.CompletedLectures == nil {
		p.CompletedLectures = []string{}
	}
	return p, nil
}

// Create inserts a fresh enrollment. An existing record is returned
// untouched with created == false.
func (r *ProgressRepository) Create(ctx context.Context, p models.UserCourseProgress) (models.UserCourseProgress, bool, error) {
	query := `
		INSERT INTO user_progress (user_id, course_id, progress, completed_lectures, last_lecture_id, enrolled_at, updated_at)
		VALUES ($1, $2, 0, '{}', '', NOW(), NOW())
		ON CONFLICT (user_id, course_id) DO NOTHING
		RETURNING ` + progressColumns

	created, err := scanProgress(r.pool.QueryRow(ctx, query, p.UserID, p.CourseID))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, ErrProgressNotFound) {
		return models.UserCourseProgress{}, false, err
	}
	existing, err := r.Get(ctx, p.UserID, p.CourseID)
	return existing, false, err
}

func (r *ProgressRepository) Get(ctx context.Context, userID string, courseID string) (models.UserCourseProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1 AND course_id = $2`
	return scanProgress(r.pool.QueryRow(ctx, query, userID, courseID))
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.UserCourseProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1 ORDER BY updated_at DESC`
	return r.list(ctx, query, userID)
}

// ListUnawarded returns finished records whose achievement row is missing.
func (r *ProgressRepository) ListUnawarded(ctx context.Context, limit int) ([]models.UserCourseProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM user_progress p
		WHERE p.progress = 100
		  AND NOT EXISTS (
			SELECT 1 FROM achievements a
			WHERE a.user_id = p.user_id AND a.id = 'cert-' || p.course_id
		  )
		ORDER BY p.updated_at ASC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

func (r *ProgressRepository) list(ctx context.Context, query string, args ...any) ([]models.UserCourseProgress, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.UserCourseProgress, 0)
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// Reset zeroes a record. Awarded achievements are kept.
func (r *ProgressRepository) Reset(ctx context.Context, userID string, courseID string) (models.UserCourseProgress, error) {
	query := `
		UPDATE user_progress
		SET progress = 0, completed_lectures = '{}', last_lecture_id = '', completed_at = NULL, updated_at = NOW()
		WHERE user_id = $1 AND course_id = $2
		RETURNING ` + progressColumns
	return scanProgress(r.pool.QueryRow(ctx, query, userID, courseID))
}

// Update runs fn against the row locked FOR UPDATE and persists the result.
// awarded is true only when fn's completion inserted a new achievement.
func (r *ProgressRepository) Update(ctx context.Context, userID string, courseID string, fn ProgressMutator) (saved models.UserCourseProgress, awarded bool, err error) {
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1 AND course_id = $2 FOR UPDATE`
		current, err := scanProgress(tx.QueryRow(ctx, query, userID, courseID))
		if err != nil {
			return err
		}

		completion, err := fn(&current)
		if err != nil {
			return err
		}

		update := `
			UPDATE user_progress
			SET progress = $3, completed_lectures = $4, last_lecture_id = $5, completed_at = $6, updated_at = NOW()
			WHERE user_id = $1 AND course_id = $2
			RETURNING ` + progressColumns
		saved, err = scanProgress(tx.QueryRow(ctx, update,
			userID, courseID, current.Progress, current.CompletedLectures, current.LastLectureID, current.CompletedAt,
		))
		if err != nil {
			return fmt.Errorf("update progress: %w", err)
		}

		if completion == nil {
			return nil
		}
		awarded, err = awardAchievement(ctx, tx, completion.Achievement, &completion.Notification)
		return err
	})
	if err != nil {
		return models.UserCourseProgress{}, false, err
	}
	return saved, awarded, nil
}

// AwardAchievement inserts the achievement and, if it was new, the notification.
func (r *ProgressRepository) AwardAchievement(ctx context.Context, a models.Achievement, n *models.Notification) (bool, error) {
	var inserted bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		inserted, err = awardAchievement(ctx, tx, a, n)
		return err
	})
	return inserted, err
}

func awardAchievement(ctx context.Context, db dbtx, a models.Achievement, n *models.Notification) (bool, error) {
	const query = `
		INSERT INTO achievements (user_id, id, course_id, title, awarded_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, id) DO NOTHING
	`
	cmd, err := db.Exec(ctx, query, a.UserID, a.ID, a.CourseID, a.Title)
	if err != nil {
		return false, fmt.Errorf("insert achievement: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}
	if n != nil {
		if err := insertNotification(ctx, db, *n); err != nil {
			return true, fmt.Errorf("insert notification: %w", err)
		}
	}
	return true, nil
}

func (r *ProgressRepository) ListAchievements(ctx context.Context, userID string) ([]models.Achievement, error) {
	const query = `
		SELECT user_id, id, course_id, title, awarded_at
		FROM achievements WHERE user_id = $1
		ORDER BY awarded_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Achievement, 0)
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.UserID, &a.ID, &a.CourseID, &a.Title, &a.AwardedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
