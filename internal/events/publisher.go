package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Skotchmaster/grocery_shop/internal/logging"
)

const publishTimeout = 5 * time.Second

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

// Emit publishes without failing the caller; delivery errors are only logged.
func Emit(ctx context.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(pubCtx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}

type Nop struct{}

func (Nop) PublishEvent(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                             { return nil }

type Message struct {
	Topic string
	Key   string
	Event any
}

// Memory keeps published events in order.
type Memory struct {
	mu       sync.Mutex
	messages []Message
}

func (m *Memory) PublishEvent(_ context.Context, topic, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Topic: topic, Key: key, Event: event})
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Types returns the "type" field of every recorded event on topic.
func (m *Memory) Types(topic string) []string {
	var out []string
	for _, msg := range m.Messages() {
		if msg.Topic != topic {
			continue
		}
		if ev, ok := msg.Event.(map[string]any); ok {
			out = append(out, fmt.Sprint(ev["type"]))
		}
	}
	return out
}
