package event

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	keys   []string
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, key string, e any) error {
	p.keys = append(p.keys, key)
	p.events = append(p.events, e)
	return nil
}

type samplePayload struct {
	OrderID string  `json:"order_id"`
	Total   float64 `json:"total"`
}

func TestNew(t *testing.T) {
	e, err := New("order-1", "Order", "OrderCreated", 0, samplePayload{OrderID: "order-1", Total: 12.5})

	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "order-1", e.AggregateID)
	assert.Equal(t, "Order", e.AggregateType)
	assert.Equal(t, "OrderCreated", e.EventType)
	assert.False(t, e.Timestamp.IsZero())

	var got samplePayload
	require.NoError(t, e.Decode(&got))
	assert.Equal(t, 12.5, got.Total)
}

func TestEmit_PublishesKeyedByAggregate(t *testing.T) {
	pub := &recordingPublisher{}

	err := Emit(context.Background(), pub, "order-1", "Order", "OrderPaid", 1, samplePayload{OrderID: "order-1"})

	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "order-1", pub.keys[0])
	e := pub.events[0].(Event)
	assert.Equal(t, "OrderPaid", e.EventType)
	assert.Equal(t, int64(1), e.Version)
}

func TestEvent_RoundTripsThroughJSON(t *testing.T) {
	e, err := New("p-1", "Product", "ProductReviewed", 3, map[string]int{"rating": 4})
	require.NoError(t, err)

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.JSONEq(t, `{"rating":4}`, string(decoded.Data))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), "k", "v"))
}
