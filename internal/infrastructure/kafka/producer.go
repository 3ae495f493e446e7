package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes domain events to a topic. It satisfies event.Publisher.
type Producer struct {
	writer messageWriter
	now    func() time.Time
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newProducer(writer)
}

func newProducer(w messageWriter) *Producer {
	return &Producer{writer: w, now: time.Now}
}

// Publish writes event as JSON. Messages with the same key land on the same
// partition, so events of one aggregate stay ordered.
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  p.now(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
