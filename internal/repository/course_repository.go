package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var ErrCourseNotFound = errors.New("course not found")

const courseColumns = `id, title, description, category, price_cents, thumbnail_url, instructor,
	sections, created_by, created_at, updated_at`

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func scanCourse(row pgx.Row) (models.Course, error) {
	var c models.Course
	if err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.PriceCents,
		&c.ThumbnailURL,
		&c.Instructor,
		&c.Sections,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	if c.Sections == nil {
		c.Sections = []models.Section{}
	}
	return c, nil
}

func sections(s []models.Section) []models.Section {
	if s == nil {
		return []models.Section{}
	}
	return s
}

func (r *CourseRepository) Create(ctx context.Context, c models.Course) (models.Course, error) {
	query := `
		INSERT INTO courses (
			id, title, description, category, price_cents, thumbnail_url, instructor,
			sections, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + courseColumns

	return scanCourse(r.pool.QueryRow(ctx, query,
		c.ID, c.Title, c.Description, c.Category, c.PriceCents, c.ThumbnailURL, c.Instructor,
		sections(c.Sections), c.CreatedBy,
	))
}

func (r *CourseRepository) Update(ctx context.Context, c models.Course) (models.Course, error) {
	query := `
		UPDATE courses SET
			title = $2, description = $3, category = $4, price_cents = $5, thumbnail_url = $6,
			instructor = $7, sections = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + courseColumns

	return scanCourse(r.pool.QueryRow(ctx, query,
		c.ID, c.Title, c.Description, c.Category, c.PriceCents, c.ThumbnailURL, c.Instructor,
		sections(c.Sections),
	))
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.pool.QueryRow(ctx, query, id))
}

// List returns courses newest first, optionally filtered by category.
func (r *CourseRepository) List(ctx context.Context, category models.Category) ([]models.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE ($1 = '' OR category = $1)
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
