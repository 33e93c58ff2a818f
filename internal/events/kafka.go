package events

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// BookAddedEvent is the Kafka message value.
type BookAddedEvent struct {
	Type    string      `json:"type"`
	Book    *model.Book `json:"book"`
	AddedAt time.Time   `json:"addedAt"`
}

// KafkaPublisher exports bookAdded events to a Kafka topic, keyed by book id.
type KafkaPublisher struct {
	writer Writer
	logger *zap.Logger
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher writing to topic on broker.
func NewKafkaPublisher(broker, topic string, logger *zap.Logger) *KafkaPublisher {
	w := &skafka.Writer{
		Addr:         skafka.TCP(broker),
		Topic:        topic,
		Balancer:     &skafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return NewKafkaPublisherWithWriter(w, logger)
}

// NewKafkaPublisherWithWriter allows injecting a test writer.
func NewKafkaPublisherWithWriter(w Writer, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger, now: time.Now}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, book *model.Book) error {
	value, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(BookAddedEvent{
		Type:    "bookAdded",
		Book:    book,
		AddedAt: p.now().UTC(),
	})
	if err != nil {
		p.logger.Error("failed to marshal kafka value", zap.Error(err))
		return err
	}
	msg := skafka.Message{Key: []byte(book.ID), Value: value}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("kafka write error", zap.String("book", book.ID), zap.Error(err))
		return err
	}
	return nil
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
