package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Bus carries events between API instances.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	StartForwarder(ctx context.Context, onEvent func(Event)) error
}

// LocalBus delivers straight to a hub; used for single-process runs and tests.
type LocalBus struct {
	hub *Hub
}

func NewLocalBus(hub *Hub) *LocalBus {
	return &LocalBus{hub: hub}
}

func (b *LocalBus) Publish(_ context.Context, ev Event) error {
	b.hub.Broadcast(ev)
	return nil
}

func (b *LocalBus) StartForwarder(context.Context, func(Event)) error {
	return nil
}

type RedisBus struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedisBus(client *redis.Client, channel string, log zerolog.Logger) *RedisBus {
	return &RedisBus{
		client:  client,
		channel: channel,
		log:     log.With().Str("component", "redis_bus").Logger(),
	}
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes to the channel and hands every event to onEvent
// until ctx is cancelled.
func (b *RedisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	if onEvent == nil {
		return errors.New("onEvent callback required")
	}

	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn().Err(err).Msg("bad realtime payload")
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return nil
}

// Publisher is what services use to announce changes. Failures are logged,
// not returned: the write has already been committed.
type Publisher struct {
	bus Bus
	log zerolog.Logger
	now func() time.Time
}

func NewPublisher(bus Bus, log zerolog.Logger) *Publisher {
	return &Publisher{bus: bus, log: log, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, kind string, topics ...string) {
	at := p.now().UTC()
	for _, topic := range topics {
		if err := p.bus.Publish(ctx, Event{Topic: topic, Kind: kind, At: at}); err != nil {
			p.log.Warn().Err(err).Str("topic", topic).Str("kind", kind).Msg("publish realtime event failed")
		}
	}
}
