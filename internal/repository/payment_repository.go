package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) Create(ctx context.Context, p models.Payment) error {
	const query = `
		INSERT INTO payments (id, user_id, course_id, amount_cents, currency, intent_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query, p.ID, p.UserID, p.CourseID, p.AmountCents, p.Currency, p.IntentID, p.Status)
	return err
}

func (r *PaymentRepository) GetByIntentID(ctx context.Context, intentID string) (models.Payment, error) {
	const query = `
		SELECT id, user_id, course_id, amount_cents, currency, intent_id, status, created_at, updated_at
		FROM payments WHERE intent_id = $1
	`
	var p models.Payment
	if err := r.pool.QueryRow(ctx, query, intentID).Scan(
		&p.ID, &p.UserID, &p.CourseID, &p.AmountCents, &p.Currency, &p.IntentID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Payment{}, ErrPaymentNotFound
		}
		return models.Payment{}, err
	}
	return p, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, intentID string, status models.PaymentStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE payments SET status = $2, updated_at = NOW() WHERE intent_id = $1`, intentID, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
