package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID          string
	UserID      string
	CourseID    *string
	AmountCents int64
	Currency    string
	IntentID    string
	Status      PaymentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
