package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultClaimInterval = 30 * time.Second
	defaultMaxDeliveries = 5
	readBatch            = 10
	readBlock            = 5 * time.Second
	readBackoff          = 2 * time.Second
)

type MessageHandler interface {
	Handle(ctx context.Context, msg redis.XMessage) error
}

// Consumer reads one stream as a member of a consumer group. Entries that
// fail stay pending; after MaxDeliveries attempts they are copied to the
// dead-letter stream and acknowledged.
type Consumer struct {
	client        *redis.Client
	stream        string
	group         string
	consumer      string
	claimInterval time.Duration
	logger        zerolog.Logger
	handler       MessageHandler

	MaxDeliveries int64
}

func NewConsumer(client *redis.Client, stream, group, consumer string, claimInterval time.Duration, logger zerolog.Logger, handler MessageHandler) *Consumer {
	if claimInterval <= 0 {
		claimInterval = defaultClaimInterval
	}
	return &Consumer{
		client:        client,
		stream:        stream,
		group:         group,
		consumer:      consumer,
		claimInterval: claimInterval,
		logger:        logger.With().Str("stream", stream).Str("group", group).Str("consumer", consumer).Logger(),
		handler:       handler,
		MaxDeliveries: defaultMaxDeliveries,
	}
}

func DeadLetterStream(stream string) string {
	return stream + ":dead"
}

// EnsureGroup creates the consumer group (and stream) if missing.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}
	c.logger.Info().Dur("claim_interval", c.claimInterval).Msg("consumer started")

	lastClaim := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.read(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error().Err(err).Msg("stream read error")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(readBackoff):
			}
		}

		if time.Since(lastClaim) >= c.claimInterval {
			lastClaim = time.Now()
			if err := c.reclaim(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Warn().Err(err).Msg("reclaim pending entries failed")
			}
		}
	}
}

func (c *Consumer) read(ctx context.Context) error {
	result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    readBatch,
		Block:    readBlock,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			c.process(ctx, msg)
		}
	}
	return nil
}

// process acks only on success.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	if err := c.handler.Handle(ctx, msg); err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("task failed; left pending")
		return
	}
	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.stream, c.group, id).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", id).Msg("ack failed")
	}
}

// reclaim takes over entries idle longer than the claim interval, whichever
// consumer held them, and retries or buries them.
func (c *Consumer) reclaim(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.stream,
		Group:  c.group,
		Idle:   c.claimInterval,
		Start:  "-",
		End:    "+",
		Count:  readBatch,
	}).Result()
	if err != nil {
		return err
	}

	for _, entry := range pending {
		msgs, err := c.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   c.stream,
			Group:    c.group,
			Consumer: c.consumer,
			MinIdle:  c.claimInterval,
			Messages: []string{entry.ID},
		}).Result()
		if err != nil {
			c.logger.Error().Err(err).Str("message_id", entry.ID).Msg("claim failed")
			continue
		}
		for _, msg := range msgs {
			if exhausted(entry.RetryCount, c.MaxDeliveries) {
				c.bury(ctx, msg, entry.RetryCount)
				continue
			}
			c.process(ctx, msg)
		}
	}
	return nil
}

func exhausted(deliveries, max int64) bool {
	return max > 0 && deliveries >= max
}

func (c *Consumer) bury(ctx context.Context, msg redis.XMessage, deliveries int64) {
	err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStream(c.stream),
		Values: deadLetterValues(msg, deliveries),
	}).Err()
	if err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dead-letter write failed")
		return
	}
	c.logger.Warn().Str("message_id", msg.ID).Int64("deliveries", deliveries).Msg("task moved to dead-letter stream")
	c.ack(ctx, msg.ID)
}

func deadLetterValues(msg redis.XMessage, deliveries int64) map[string]any {
	values := make(map[string]any, len(msg.Values)+2)
	for k, v := range msg.Values {
		values[k] = v
	}
	values["source_id"] = msg.ID
	values["deliveries"] = deliveries
	return values
}
