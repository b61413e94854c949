package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel_smart/internal/domain"
)

// scriptedReader hands out queued messages, then blocks until cancelled.
type scriptedReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	drained   chan struct{}
}

func newScriptedReader(msgs ...kafka.Message) *scriptedReader {
	return &scriptedReader{queue: msgs, drained: make(chan struct{})}
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	select {
	case <-r.drained:
	default:
		close(r.drained)
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error { return nil }

func eventMsg(t *testing.T, offset int64, id string) kafka.Message {
	t.Helper()
	b, err := json.Marshal(domain.BookingEvent{ID: id, OfferID: "1", Status: domain.OutcomeSucceeded})
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: b}
}

var errPermanent = errors.New("permanent")

func TestConsume_CommitsAfterHandling(t *testing.T) {
	r := newScriptedReader(
		eventMsg(t, 1, "a"),
		kafka.Message{Offset: 2, Value: []byte("{not json")},
		eventMsg(t, 3, "bad"),
		eventMsg(t, 4, "b"),
	)
	c := &Consumer{reader: r, backoff: time.Millisecond, maxWait: 5 * time.Millisecond}

	var mu sync.Mutex
	var seen []string
	flaky := 2
	handle := func(_ context.Context, e domain.BookingEvent) error {
		mu.Lock()
		defer mu.Unlock()
		if e.ID == "bad" {
			return errPermanent
		}
		if e.ID == "b" && flaky > 0 {
			flaky--
			return errors.New("db down")
		}
		seen = append(seen, e.ID)
		return nil
	}
	skip := func(err error) bool { return errors.Is(err, errPermanent) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Consume(ctx, handle, skip) }()

	select {
	case <-r.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain the queue")
	}
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, []int64{1, 2, 3, 4}, r.committed)
}

func TestConsume_CancelDuringRetryDoesNotCommit(t *testing.T) {
	r := newScriptedReader(eventMsg(t, 1, "a"))
	c := &Consumer{reader: r, backoff: time.Hour, maxWait: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 1)
	handle := func(context.Context, domain.BookingEvent) error {
		select {
		case calls <- struct{}{}:
		default:
		}
		return errors.New("db down")
	}

	done := make(chan error, 1)
	go func() { done <- c.Consume(ctx, handle, nil) }()
	<-calls
	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, r.committed)
}
