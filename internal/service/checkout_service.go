package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/ids"
	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/payment"
)

var (
	ErrAmountMismatch = errors.New("amount does not match course price")
	ErrPaymentGateway = errors.New("payment gateway error")
)

// Intent metadata keys, checked again on enrollment.
const (
	metaUserID   = "user_id"
	metaCourseID = "course_id"
)

type CheckoutService struct {
	courses  CourseStore
	payments PaymentStore
	gateway  payment.Gateway
	currency string
	log      zerolog.Logger
}

func NewCheckoutService(courses CourseStore, payments PaymentStore, gateway payment.Gateway, currency string, log zerolog.Logger) *CheckoutService {
	if currency == "" {
		currency = "usd"
	}
	return &CheckoutService{
		courses:  courses,
		payments: payments,
		gateway:  gateway,
		currency: strings.ToLower(currency),
		log:      log.With().Str("service", "checkout").Logger(),
	}
}

type CheckoutInput struct {
	Amount      int64  `json:"amount"`
	CourseTitle string `json:"courseTitle"`
	CourseID    string `json:"courseId"`
	UserID      string `json:"userId"`
}

type CheckoutResult struct {
	ClientSecret string `json:"clientSecret"`
	IntentID     string `json:"paymentIntentId"`
}

func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, caller models.Identity, in CheckoutInput) (CheckoutResult, error) {
	if in.UserID != caller.UserID {
		return CheckoutResult{}, ErrForbidden
	}
	if in.Amount <= 0 {
		return CheckoutResult{}, invalid("amount must be a positive number of cents")
	}

	description := strings.TrimSpace(in.CourseTitle)
	metadata := map[string]string{metaUserID: in.UserID}
	var courseID *string
	if in.CourseID != "" {
		course, err := s.courses.GetByID(ctx, in.CourseID)
		if err != nil {
			return CheckoutResult{}, err
		}
		if !course.IsPaid() {
			return CheckoutResult{}, invalid("course %s is free", course.ID)
		}
		if *course.PriceCents != in.Amount {
			return CheckoutResult{}, ErrAmountMismatch
		}
		description = course.Title
		metadata[metaCourseID] = course.ID
		courseID = &course.ID
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.IntentParams{
		AmountCents: in.Amount,
		Currency:    s.currency,
		Description: description,
		Metadata:    metadata,
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", in.UserID).Msg("create payment intent failed")
		return CheckoutResult{}, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	record := models.Payment{
		ID:          ids.New(),
		UserID:      in.UserID,
		CourseID:    courseID,
		AmountCents: in.Amount,
		Currency:    s.currency,
		IntentID:    intent.ID,
		Status:      models.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, record); err != nil {
		return CheckoutResult{}, err
	}

	return CheckoutResult{ClientSecret: intent.ClientSecret, IntentID: intent.ID}, nil
}
