package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/event"
)

// MockPublisher records published events.
type MockPublisher struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key   string
	Event event.Event
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, e any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, _ := e.(event.Event)
	m.PublishCalls = append(m.PublishCalls, PublishCall{Key: key, Event: ev})
	return m.PublishErr
}

// EventTypes returns the published event types in order.
func (m *MockPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, 0, len(m.PublishCalls))
	for _, c := range m.PublishCalls {
		types = append(types, c.Event.EventType)
	}
	return types
}
