package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single topic keyed by routing key, so
// all events of one kind land on the same partition in order.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(writer, topic, logger), nil
}

func newKafkaPublisher(writer messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	msg := kafka.Message{
		Key:   []byte(routingKey),
		Value: payload,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "routing-key", Value: []byte(routingKey)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to write kafka message",
			"topic", p.topic,
			"routing_key", routingKey,
			"error", err,
		)
		return err
	}

	p.logger.Debug("kafka message written",
		"topic", p.topic,
		"routing_key", routingKey,
		"size", len(payload),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
