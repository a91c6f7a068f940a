package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var ErrContentNotFound = errors.New("content not found")

const contentColumns = `id, kind, title, summary, body, category, author, media_url, external_url,
	starts_at, ends_at, duration_minutes, created_by, created_at, updated_at`

type ContentRepository struct {
	pool *pgxpool.Pool
}

func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

func scanContent(row pgx.Row) (models.ContentItem, error) {
	var c models.ContentItem
	if err := row.Scan(
		&c.ID,
		&c.Kind,
		&c.Title,
		&c.Summary,
		&c.Body,
		&c.Category,
		&c.Author,
		&c.MediaURL,
		&c.ExternalURL,
		&c.StartsAt,
		&c.EndsAt,
		&c.DurationMinutes,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ContentItem{}, ErrContentNotFound
		}
		return models.ContentItem{}, err
	}
	return c, nil
}

func (r *ContentRepository) Create(ctx context.Context, c models.ContentItem) (models.ContentItem, error) {
	query := `
		INSERT INTO content_items (
			id, kind, title, summary, body, category, author, media_url, external_url,
			starts_at, ends_at, duration_minutes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING ` + contentColumns

	return scanContent(r.pool.QueryRow(ctx, query,
		c.ID, c.Kind, c.Title, c.Summary, c.Body, c.Category, c.Author, c.MediaURL, c.ExternalURL,
		c.StartsAt, c.EndsAt, c.DurationMinutes, c.CreatedBy,
	))
}

func (r *ContentRepository) Update(ctx context.Context, c models.ContentItem) (models.ContentItem, error) {
	query := `
		UPDATE content_items SET
			title = $3, summary = $4, body = $5, category = $6, author = $7, media_url = $8,
			external_url = $9, starts_at = $10, ends_at = $11, duration_minutes = $12, updated_at = NOW()
		WHERE kind = $1 AND id = $2
		RETURNING ` + contentColumns

	return scanContent(r.pool.QueryRow(ctx, query,
		c.Kind, c.ID, c.Title, c.Summary, c.Body, c.Category, c.Author, c.MediaURL,
		c.ExternalURL, c.StartsAt, c.EndsAt, c.DurationMinutes,
	))
}

func (r *ContentRepository) Delete(ctx context.Context, kind models.ContentKind, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM content_items WHERE kind = $1 AND id = $2`, kind, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (r *ContentRepository) GetByID(ctx context.Context, kind models.ContentKind, id string) (models.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items WHERE kind = $1 AND id = $2`
	return scanContent(r.pool.QueryRow(ctx, query, kind, id))
}

// List returns a kind's items newest first.
// List returns items of kind newest first. A limit of 0 returns all of them.
func (r *ContentRepository) List(ctx context.Context, kind models.ContentKind, limit int) ([]models.ContentItem, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content_items
		WHERE kind = $1
		ORDER BY created_at DESC, id DESC
		LIMIT NULLIF($2::int, 0)
	`

	rows, err := r.pool.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.ContentItem, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
