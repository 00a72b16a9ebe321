package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the topic exchange domain events are published to.
	ExchangeName = "kafeel.events"

	appID = "kafeel"
)

// RabbitMQPublisher publishes events to a durable topic exchange, using the
// event routing key as the AMQP routing key.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewRabbitMQPublisher dials url and declares the exchange.
func NewRabbitMQPublisher(url string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("rabbitmq publisher connected", "exchange", ExchangeName)

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  ch,
		exchange: ExchangeName,
		logger:   logger.With("component", "rabbitmq_publisher"),
	}, nil
}

// Publish sends payload as a persistent message.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := publishing(routingKey, payload, time.Now())
	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		p.logger.Error("failed to publish message",
			"routing_key", routingKey,
			"error", err,
		)
		return err
	}

	p.logger.Debug("message published",
		"routing_key", routingKey,
		"message_id", msg.MessageId,
	)
	return nil
}

// publishing builds the AMQP message. The event id becomes the message id
// so consumers can drop redeliveries; a payload without an envelope is sent
// as is, stamped with now.
func publishing(routingKey string, payload []byte, now time.Time) amqp.Publishing {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		AppId:        appID,
		Type:         routingKey,
		Timestamp:    now,
		Body:         payload,
	}
	if event, err := DecodeEvent(routingKey, payload); err == nil {
		msg.MessageId = event.EventID.String()
		if !event.OccurredAt.IsZero() {
			msg.Timestamp = event.OccurredAt
		}
	}
	return msg
}

// Close closes the channel and the connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warn("error closing channel", "error", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}

	p.logger.Info("rabbitmq publisher closed")
	return nil
}
