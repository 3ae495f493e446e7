package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/ec-storefront/internal/event"
)

// EventHandler processes one decoded domain event.
type EventHandler func(ctx context.Context, e event.Event) error

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer delivers the storefront's domain events to a handler, committing
// each offset only after the handler has seen the message.
type Consumer struct {
	reader messageReader
	// retryDelay is the pause after a failed fetch.
	retryDelay time.Duration
}

const defaultRetryDelay = time.Second

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
		retryDelay: defaultRetryDelay,
	}
}

// Consume runs until ctx is cancelled or the reader is closed. Undecodable
// messages and handler failures are logged and committed so one bad event
// cannot stall the group.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Printf("[Kafka] Error fetching message, retrying in %s: %v", c.retryDelay, err)
			if err := c.wait(ctx); err != nil {
				return err
			}
			continue
		}

		c.dispatch(ctx, msg, handler)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Kafka] Error committing offset %d: %v", msg.Offset, err)
		}
	}
}

func (c *Consumer) wait(ctx context.Context) error {
	t := time.NewTimer(c.retryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg kafka.Message, handler EventHandler) {
	var e event.Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		log.Printf("[Kafka] Skipping undecodable message at offset %d: %v", msg.Offset, err)
		return
	}
	if err := handler(ctx, e); err != nil {
		log.Printf("[Kafka] Error handling %s event %s: %v", e.EventType, e.ID, err)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
