package payment

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory Gateway for tests and local runs without a processor.
type Fake struct {
	mu      sync.Mutex
	next    int
	intents map[string]Intent
	Err     error
}

func NewFake() *Fake {
	return &Fake{intents: make(map[string]Intent)}
}

func (f *Fake) CreateIntent(_ context.Context, params IntentParams) (Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return Intent{}, f.Err
	}
	f.next++
	id := fmt.Sprintf("pi_fake_%d", f.next)
	intent := Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		AmountCents:  params.AmountCents,
		Currency:     params.Currency,
		Metadata:     params.Metadata,
	}
	f.intents[id] = intent
	return intent, nil
}

func (f *Fake) GetIntent(_ context.Context, id string) (Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	intent, ok := f.intents[id]
	if !ok {
		return Intent{}, fmt.Errorf("payment intent %s not found", id)
	}
	return intent, nil
}

// Succeed marks an intent as paid, as the client-side confirmation would.
func (f *Fake) Succeed(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	intent := f.intents[id]
	intent.Status = IntentSucceeded
	f.intents[id] = intent
}
