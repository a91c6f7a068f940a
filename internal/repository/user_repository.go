package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazeel2019/Upskill-sub000/internal/database"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

const userColumns = `id, email, password_hash, display_name, photo_url, bio, title, location, company,
	social_links, role, status, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.PhotoURL,
		&user.Bio,
		&user.Title,
		&user.Location,
		&user.Company,
		&user.SocialLinks,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	if user.SocialLinks == nil {
		user.SocialLinks = map[string]string{}
	}
	return user, nil
}

func socialLinks(links map[string]string) map[string]string {
	if links == nil {
		return map[string]string{}
	}
	return links
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, display_name, photo_url, bio, title, location, company,
			social_links, role, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.PhotoURL,
		user.Bio,
		user.Title,
		user.Location,
		user.Company,
		socialLinks(user.SocialLinks),
		user.Role,
		user.Status,
	)
	if database.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user models.User) (models.User, error) {
	query := `
		UPDATE users SET
			display_name = $2, photo_url = $3, bio = $4, title = $5, location = $6,
			company = $7, social_links = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query,
		user.ID,
		user.DisplayName,
		user.PhotoURL,
		user.Bio,
		user.Title,
		user.Location,
		user.Company,
		socialLinks(user.SocialLinks),
	))
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status models.UserStatus) error {
	return r.touch(ctx, `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	return r.touch(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
}

// touch runs a single-row update, reporting ErrUserNotFound when nothing matched.
func (r *UserRepository) touch(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	switch {
	case err != nil:
		return err
	case tag.RowsAffected() == 0:
		return ErrUserNotFound
	}
	return nil
}

// Search matches display name or email as a case-insensitive substring.
func (r *UserRepository) Search(ctx context.Context, q string, excludeID string, limit int) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id <> $1 AND status = 'active'
		  AND (display_name ILIKE $2 OR email ILIKE $2)
		ORDER BY display_name ASC
		LIMIT $3
	`
	return r.list(ctx, query, excludeID, containsPattern(q), limit)
}

func (r *UserRepository) List(ctx context.Context, limit int, offset int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}
