package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing struct{ calls int }

func (f *failing) PublishEvent(context.Context, string, string, any) error {
	f.calls++
	return errors.New("broker down")
}
func (f *failing) Close() error { return nil }

func TestEmitRecords(t *testing.T) {
	m := &Memory{}
	Emit(context.Background(), m, TopicCart, "u1", map[string]any{"type": "cart_item_added"})
	Emit(context.Background(), m, TopicOrder, "u1", map[string]any{"type": "order_created"})

	require.Len(t, m.Messages(), 2)
	assert.Equal(t, []string{"cart_item_added"}, m.Types(TopicCart))
	assert.Equal(t, "u1", m.Messages()[1].Key)
}

func TestEmitSwallowsErrors(t *testing.T) {
	f := &failing{}
	assert.NotPanics(t, func() {
		Emit(context.Background(), f, TopicCart, "k", map[string]any{"type": "x"})
	})
	assert.Equal(t, 1, f.calls)

	assert.NotPanics(t, func() {
		Emit(context.Background(), nil, TopicCart, "k", map[string]any{"type": "x"})
	})
}

func TestEmitIgnoresCancelledRequest(t *testing.T) {
	m := &Memory{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Emit(ctx, m, TopicOrder, "k", map[string]any{"type": "order_created"})
	assert.Len(t, m.Messages(), 1)
}

func TestNewProducerNeedsBrokers(t *testing.T) {
	_, err := NewProducer(nil, nil)
	require.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"}, nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

// blockingWriter stalls every write until release is closed.
type blockingWriter struct {
	release chan struct{}
	mu      sync.Mutex
	written []kafka.Message
	err     error
}

func (w *blockingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	select {
	case <-w.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, msgs...)
	return w.err
}

func (w *blockingWriter) Close() error { return nil }

func TestProducerDoesNotWaitForBroker(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	p := newProducer(w, nil, 4)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.PublishEvent(context.Background(), TopicCart, "u1", map[string]any{"type": "cart_item_added"}))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(w.release)
	require.NoError(t, p.Close())
	assert.Len(t, w.written, 3)

	err := p.PublishEvent(context.Background(), TopicCart, "u1", map[string]any{"type": "x"})
	assert.ErrorIs(t, err, ErrProducerClosed)
	require.NoError(t, p.Close())
}

func TestProducerDropsWhenQueueFull(t *testing.T) {
	w := &blockingWriter{release: make(chan struct{})}
	p := newProducer(w, nil, 1)

	var full error
	for i := 0; i < 5 && full == nil; i++ {
		full = p.PublishEvent(context.Background(), TopicOrder, "u1", map[string]any{"type": "order_created"})
	}
	assert.ErrorIs(t, full, ErrQueueFull)

	close(w.release)
	require.NoError(t, p.Close())
}

func TestProducerLogsDeliveryFailures(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	w := &blockingWriter{release: make(chan struct{}), err: errors.New("broker down")}
	close(w.release)
	p := newProducer(w, l, 4)

	require.NoError(t, p.PublishEvent(context.Background(), TopicOrder, "u1", map[string]any{"type": "order_created"}))
	require.NoError(t, p.Close())
	assert.Contains(t, buf.String(), "kafka_delivery_error")
	assert.Contains(t, buf.String(), "broker down")
}
