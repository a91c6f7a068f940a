package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazeel2019/Upskill-sub000/internal/database"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

const postColumns = `id, author_id, content, category, like_count, comment_count, created_at`

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func scanPost(row pgx.Row) (models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Content, &p.Category, &p.LikeCount, &p.CommentCount, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, err
	}
	return p, nil
}

func (r *PostRepository) Create(ctx context.Context, p models.Post) (models.Post, error) {
	query := `
		INSERT INTO posts (id, author_id, content, category, like_count, comment_count, created_at)
		VALUES ($1, $2, $3, $4, 0, 0, NOW())
		RETURNING ` + postColumns
	return scanPost(r.pool.QueryRow(ctx, query, p.ID, p.AuthorID, p.Content, p.Category))
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.pool.QueryRow(ctx, query, id))
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

// List pages backwards from before (exclusive); a nil cursor starts at the newest post.
func (r *PostRepository) List(ctx context.Context, limit int, before *time.Time) ([]models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE ($2::timestamptz IS NULL OR created_at < $2)
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) AddComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	stored := c
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insert = `
			INSERT INTO post_comments (id, post_id, author_id, text, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING created_at
		`
		if err := tx.QueryRow(ctx, insert, c.ID, c.PostID, c.AuthorID, c.Text).Scan(&stored.CreatedAt); err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrPostNotFound
			}
			return fmt.Errorf("insert comment: %w", err)
		}
		_, err := tx.Exec(ctx, `UPDATE posts SET comment_count = comment_count + 1 WHERE id = $1`, c.PostID)
		return err
	})
	return stored, err
}

func (r *PostRepository) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	const query = `
		SELECT id, post_id, author_id, text, created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Like is idempotent; changed reports whether a new like was recorded.
func (r *PostRepository) Like(ctx context.Context, postID string, userID string) (bool, error) {
	return r.toggleLike(ctx, postID, userID,
		`INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING`,
		`UPDATE posts SET like_count = like_count + 1 WHERE id = $1`,
	)
}

func (r *PostRepository) Unlike(ctx context.Context, postID string, userID string) (bool, error) {
	return r.toggleLike(ctx, postID, userID,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`,
		`UPDATE posts SET like_count = GREATEST(like_count - 1, 0) WHERE id = $1`,
	)
}

func (r *PostRepository) toggleLike(ctx context.Context, postID string, userID string, change string, counter string) (bool, error) {
	var changed bool
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, change, postID, userID)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrPostNotFound
			}
			return err
		}
		if cmd.RowsAffected() == 0 {
			return nil
		}
		changed = true
		_, err = tx.Exec(ctx, counter, postID)
		return err
	})
	return changed, err
}
