package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"travel_smart/internal/adapters/observability"
	"travel_smart/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes booking outcomes to a single topic.
type Producer struct {
	topic  string
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{topic: topic, writer: w}
}

// PublishBooking writes e keyed by offer id so every attempt on one offer
// lands on the same partition.
func (p *Producer) PublishBooking(ctx context.Context, e domain.BookingEvent) error {
	msg, err := p.message(e)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, msg)
	observability.ObserveJournal("kafka", err)
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", p.topic, err)
	}
	log.Debug().Str("topic", p.topic).Str("type", e.Type).Str("offer", e.OfferID).Msg("booking event published")
	return nil
}

func (p *Producer) message(e domain.BookingEvent) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal booking event: %w", err)
	}
	return kafka.Message{
		Topic: p.topic,
		Key:   []byte(string(e.Kind) + ":" + e.OfferID),
		Value: data,
		Time:  e.At,
	}, nil
}

func (p *Producer) Close() error { return p.writer.Close() }
