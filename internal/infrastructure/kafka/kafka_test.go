package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/event"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

// fakeReader replays errs, then messages, then returns end if set, or
// blocks until ctx is done.
type fakeReader struct {
	messages  []kafka.Message
	errs      []error
	end       error
	fetches   int
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.fetches++
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		return msg, nil
	}
	if r.end != nil {
		return kafka.Message{}, r.end
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestProducer_PublishKeyedJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	e, err := event.New("order-1", "Order", "OrderCreated", 0, map[string]string{"order_id": "order-1"})
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), "order-1", e))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "order-1", string(w.messages[0].Key))
	assert.Equal(t, fixed, w.messages[0].Time)
	var decoded event.Event
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, "OrderCreated", decoded.EventType)
}

func TestProducer_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newProducer(w)

	err := p.Publish(context.Background(), "k", map[string]string{})

	assert.EqualError(t, err, "broker down")
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newProducer(w).Close())
	assert.True(t, w.closed)
}

func TestConsumer_DispatchesDecodedEvents(t *testing.T) {
	e, err := event.New("order-1", "Order", "OrderPaid", 1, map[string]string{"order_id": "order-1"})
	require.NoError(t, err)
	value, err := json.Marshal(e)
	require.NoError(t, err)

	reader := &fakeReader{
		errs: []error{errors.New("transient")},
		messages: []kafka.Message{
			{Offset: 7, Value: []byte("not json")},
			{Offset: 8, Value: value},
			{Offset: 9, Value: value},
		},
	}
	c := &Consumer{reader: reader, retryDelay: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	var got []event.Event
	err = c.Consume(ctx, func(_ context.Context, e event.Event) error {
		got = append(got, e)
		if len(got) == 2 {
			cancel()
		}
		return errors.New("handler failures are logged")
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, got, 2)
	assert.Equal(t, "OrderPaid", got[0].EventType)
	assert.Equal(t, int64(1), got[0].Version)
	assert.Equal(t, []int64{7, 8, 9}, reader.committed)
}

func TestConsumer_ReturnsWhenReaderCloses(t *testing.T) {
	reader := &fakeReader{end: io.EOF}
	c := &Consumer{reader: reader, retryDelay: time.Hour}

	err := c.Consume(context.Background(), func(context.Context, event.Event) error { return nil })

	assert.NoError(t, err)
	assert.Equal(t, 1, reader.fetches)
}

func TestConsumer_BacksOffOnFetchErrors(t *testing.T) {
	reader := &fakeReader{end: errors.New("broker unreachable")}
	c := &Consumer{reader: reader, retryDelay: 20 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 70*time.Millisecond)
	defer cancel()

	err := c.Consume(ctx, func(context.Context, event.Event) error { return nil })

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, reader.fetches, 2)
	assert.LessOrEqual(t, reader.fetches, 5)
}
