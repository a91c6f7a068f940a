package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

var ErrNotConfigured = errors.New("payment gateway not configured")

type IntentStatus string

const (
	IntentSucceeded  IntentStatus = "succeeded"
	IntentProcessing IntentStatus = "processing"
	IntentCanceled   IntentStatus = "canceled"
)

type IntentParams struct {
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
	AmountCents  int64
	Currency     string
	Metadata     map[string]string
}

// Gateway is the opaque payment processor.
type Gateway interface {
	CreateIntent(ctx context.Context, params IntentParams) (Intent, error)
	GetIntent(ctx context.Context, id string) (Intent, error)
}

type StripeGateway struct {
	intents *paymentintent.Client
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{
		intents: &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, params IntentParams) (Intent, error) {
	if g.intents.Key == "" {
		return Intent{}, ErrNotConfigured
	}

	p := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.AmountCents),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if params.Description != "" {
		p.Description = stripe.String(params.Description)
	}
	for k, v := range params.Metadata {
		p.AddMetadata(k, v)
	}
	p.Context = ctx

	pi, err := g.intents.New(p)
	if err != nil {
		return Intent{}, fmt.Errorf("create payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (Intent, error) {
	if g.intents.Key == "" {
		return Intent{}, ErrNotConfigured
	}

	p := &stripe.PaymentIntentParams{}
	p.Context = ctx
	pi, err := g.intents.Get(id, p)
	if err != nil {
		return Intent{}, fmt.Errorf("get payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) Intent {
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       IntentStatus(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}
