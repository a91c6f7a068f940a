package realtime

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const subscriptionBuffer = 16

// Subscription receives events for the topics it registered.
type Subscription struct {
	ID     uuid.UUID
	topics []string
	events chan Event
	hub    *Hub
	once   sync.Once
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close unregisters the subscription and closes its channel. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.events)
	})
}

// Hub fans events out to in-process subscribers.
type Hub struct {
	mu            sync.RWMutex
	log           zerolog.Logger
	subscriptions map[string]map[*Subscription]struct{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:           log.With().Str("component", "realtime_hub").Logger(),
		subscriptions: make(map[string]map[*Subscription]struct{}),
	}
}

func (h *Hub) Subscribe(topics ...string) *Subscription {
	sub := &Subscription{
		ID:     uuid.New(),
		events: make(chan Event, subscriptionBuffer),
		hub:    h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		sub.topics = append(sub.topics, topic)
		subs, ok := h.subscriptions[topic]
		if !ok {
			subs = make(map[*Subscription]struct{})
			h.subscriptions[topic] = subs
		}
		subs[sub] = struct{}{}
	}

	h.log.Debug().Str("subscription_id", sub.ID.String()).Strs("topics", sub.topics).Msg("subscribed")
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range sub.topics {
		if subs, ok := h.subscriptions[topic]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.subscriptions, topic)
			}
		}
	}
}

// Broadcast never blocks. A full subscriber already has a pending event, and
// since each event triggers a full re-query the dropped one is redundant.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscriptions[ev.Topic] {
		select {
		case sub.events <- ev:
		default:
			h.log.Debug().Str("subscription_id", sub.ID.String()).Str("topic", ev.Topic).Msg("subscriber busy, event coalesced")
		}
	}
}

func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[topic])
}
