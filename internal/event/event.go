// Package event defines the envelope used for domain events published to
// the event stream.
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int64           `json:"version"`
}

// Publisher delivers events keyed by aggregate id.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// New builds an event envelope around data.
func New(aggregateID, aggregateType, eventType string, version int64, data any) (Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       version,
	}, nil
}

// Emit builds and publishes an event.
func Emit(ctx context.Context, pub Publisher, aggregateID, aggregateType, eventType string, version int64, data any) error {
	e, err := New(aggregateID, aggregateType, eventType, version, data)
	if err != nil {
		return err
	}
	return pub.Publish(ctx, aggregateID, e)
}

// Decode unmarshals the event payload into out.
func (e Event) Decode(out any) error {
	return json.Unmarshal(e.Data, out)
}

// NopPublisher drops every event. Used when the event stream is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
