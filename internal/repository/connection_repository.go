package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazeel2019/Upskill-sub000/internal/database"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionExists   = errors.New("connection already exists")
)

const connectionColumns = `user_low, user_high, requester_id, status, created_at, updated_at`

type ConnectionRepository struct {
	pool *pgxpool.Pool
}

func NewConnectionRepository(pool *pgxpool.Pool) *ConnectionRepository {
	return &ConnectionRepository{pool: pool}
}

func scanConnection(row pgx.Row) (models.Connection, error) {
	var c models.Connection
	if err := row.Scan(&c.UserLow, &c.UserHigh, &c.RequesterID, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Connection{}, ErrConnectionNotFound
		}
		return models.Connection{}, err
	}
	return c, nil
}

func (r *ConnectionRepository) Get(ctx context.Context, a string, b string) (models.Connection, error) {
	low, high := models.OrderPair(a, b)
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE user_low = $1 AND user_high = $2`
	return scanConnection(r.pool.QueryRow(ctx, query, low, high))
}

func (r *ConnectionRepository) ListByUser(ctx context.Context, userID string) ([]models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE user_low = $1 OR user_high = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conns := make([]models.Connection, 0)
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// CreateRequest inserts a pending row and the recipient's notification together.
func (r *ConnectionRepository) CreateRequest(ctx context.Context, conn models.Connection, n models.Notification) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
			INSERT INTO connections (user_low, user_high, requester_id, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
		`
		if _, err := tx.Exec(ctx, query, conn.UserLow, conn.UserHigh, conn.RequesterID, models.ConnectionStatusPending); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrConnectionExists
			}
			return fmt.Errorf("insert connection: %w", err)
		}
		return insertNotification(ctx, tx, n)
	})
}

// Accept moves a pending row requested by requesterID to connected.
func (r *ConnectionRepository) Accept(ctx context.Context, a string, b string, requesterID string, n models.Notification) (models.Connection, error) {
	low, high := models.OrderPair(a, b)
	var accepted models.Connection
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE connections SET status = 'connected', updated_at = NOW()
			WHERE user_low = $1 AND user_high = $2 AND status = 'pending' AND requester_id = $3
			RETURNING ` + connectionColumns
		c, err := scanConnection(tx.QueryRow(ctx, query, low, high, requesterID))
		if err != nil {
			return err
		}
		accepted = c
		return insertNotification(ctx, tx, n)
	})
	return accepted, err
}

// DeleteMatching removes the pair's row if it is in the given status and,
// when requesterID is non-empty, was requested by requesterID.
func (r *ConnectionRepository) DeleteMatching(ctx context.Context, a string, b string, status models.ConnectionStatus, requesterID string) error {
	low, high := models.OrderPair(a, b)
	const query = `
		DELETE FROM connections
		WHERE user_low = $1 AND user_high = $2 AND status = $3
		  AND ($4 = '' OR requester_id = $4)
	`
	cmd, err := r.pool.Exec(ctx, query, low, high, status, requesterID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrConnectionNotFound
	}
	return nil
}
