package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"travel_smart/internal/domain"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one booking event. Returning an error for which skip
// reports true drops the message; any other error retries it.
type Handler func(ctx context.Context, e domain.BookingEvent) error

// Consumer reads booking events as part of a consumer group and commits
// each message only after it has been handled.
type Consumer struct {
	reader  messageReader
	backoff time.Duration
	maxWait time.Duration
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		backoff: 500 * time.Millisecond,
		maxWait: 30 * time.Second,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume runs until ctx is done. Undecodable messages and those the
// handler rejects as permanent (skip(err) == true) are logged and committed.
func (c *Consumer) Consume(ctx context.Context, handle Handler, skip func(error) bool) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}

		var e domain.BookingEvent
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			log.Warn().Err(err).Int64("offset", msg.Offset).Msg("dropping undecodable booking event")
		} else if err := c.handleWithRetry(ctx, handle, skip, e, msg.Offset); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka commit: %w", err)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handle Handler, skip func(error) bool, e domain.BookingEvent, offset int64) error {
	wait := c.backoff
	for attempt := 1; ; attempt++ {
		err := handle(ctx, e)
		if err == nil {
			return nil
		}
		if skip != nil && skip(err) {
			log.Warn().Err(err).Int64("offset", offset).Msg("skipping booking event")
			return nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Str("id", e.ID).Msg("booking event failed")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(err, ctx.Err())
		case <-t.C:
		}
		wait = min(wait*2, c.maxWait)
	}
}
