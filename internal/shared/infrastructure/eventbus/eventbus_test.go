package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

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

const samplePayload = `{"event_id":"6f1c3c1e-8a4a-4d43-9d1b-1f0f0b3b6c11","aggregate_type":"achievement","routing_key":"gamification.achievement.unlocked","occurred_at":"2026-04-02T10:00:00Z","type":"deep_diver"}`

func TestDecodeEvent(t *testing.T) {
	event, err := DecodeEvent("ignored", []byte(samplePayload))
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse("6f1c3c1e-8a4a-4d43-9d1b-1f0f0b3b6c11"), event.EventID)
	assert.Equal(t, "gamification.achievement.unlocked", event.RoutingKey)
	assert.Equal(t, "achievement", event.AggregateType)
	assert.JSONEq(t, samplePayload, string(event.Payload))

	t.Run("falls back to routing key argument", func(t *testing.T) {
		event, err := DecodeEvent("tracking.session.recorded", []byte(`{"event_id":"6f1c3c1e-8a4a-4d43-9d1b-1f0f0b3b6c11"}`))
		require.NoError(t, err)
		assert.Equal(t, "tracking.session.recorded", event.RoutingKey)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := DecodeEvent("k", []byte("{"))
		assert.Error(t, err)
	})
}

func TestInProcessBus(t *testing.T) {
	ctx := context.Background()
	bus := NewInProcessBus(nil)

	var specific, all []string
	bus.RegisterConsumer(ConsumerFunc{
		Keys: []string{"gamification.achievement.unlocked"},
		Fn: func(_ context.Context, e *ConsumedEvent) error {
			specific = append(specific, e.RoutingKey)
			return nil
		},
	})
	bus.RegisterConsumer(ConsumerFunc{
		Keys: []string{Wildcard},
		Fn: func(_ context.Context, e *ConsumedEvent) error {
			all = append(all, e.RoutingKey)
			return nil
		},
	})

	require.NoError(t, bus.Publish(ctx, "gamification.achievement.unlocked", []byte(samplePayload)))
	require.NoError(t, bus.Publish(ctx, "tracking.session.recorded",
		[]byte(`{"event_id":"6f1c3c1e-8a4a-4d43-9d1b-1f0f0b3b6c12","routing_key":"tracking.session.recorded"}`)))

	assert.Equal(t, []string{"gamification.achievement.unlocked"}, specific)
	assert.Equal(t, []string{"gamification.achievement.unlocked", "tracking.session.recorded"}, all)

	t.Run("bad payload is skipped", func(t *testing.T) {
		assert.NoError(t, bus.Publish(ctx, "x", []byte("not json")))
	})

	t.Run("consumer errors are returned", func(t *testing.T) {
		failing := NewInProcessBus(nil)
		boom := errors.New("boom")
		failing.RegisterConsumer(ConsumerFunc{
			Keys: []string{Wildcard},
			Fn:   func(context.Context, *ConsumedEvent) error { return boom },
		})
		assert.ErrorIs(t, failing.Publish(ctx, "k", []byte(samplePayload)), boom)
	})
}

func TestKafkaPublisher(t *testing.T) {
	ctx := context.Background()
	writer := &fakeWriter{}
	pub := newKafkaPublisher(writer, "kafeel.events", nil)

	require.NoError(t, pub.Publish(ctx, "insights.day.evaluated", []byte(`{"day":"2026-04-01"}`)))
	require.Len(t, writer.messages, 1)
	assert.Equal(t, []byte("insights.day.evaluated"), writer.messages[0].Key)
	assert.JSONEq(t, `{"day":"2026-04-01"}`, string(writer.messages[0].Value))

	writer.err = errors.New("leader not available")
	assert.ErrorIs(t, pub.Publish(ctx, "k", nil), writer.err)

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)

	_, err := NewKafkaPublisher(nil, "t", nil)
	assert.Error(t, err)
	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "", nil)
	assert.Error(t, err)
}

func TestBreakerPublisher(t *testing.T) {
	ctx := context.Background()
	next := new(mockPublisher)
	down := errors.New("connection refused")
	next.On("Publish", mock.Anything, "k", mock.Anything).Return(down)

	var states []string
	pub := NewBreakerPublisher("rabbitmq", next, BreakerConfig{
		MaxRequests:      1,
		Timeout:          time.Hour,
		FailureThreshold: 2,
	}, nil, func(s string) { states = append(states, s) })

	assert.ErrorIs(t, pub.Publish(ctx, "k", nil), down)
	assert.ErrorIs(t, pub.Publish(ctx, "k", nil), down)
	assert.Equal(t, "open", pub.State())

	assert.ErrorIs(t, pub.Publish(ctx, "k", nil), gobreaker.ErrOpenState)
	next.AssertNumberOfCalls(t, "Publish", 2)
	assert.Equal(t, []string{"open"}, states)

	next.On("Close").Return(nil)
	assert.NoError(t, pub.Close())
}

func TestRabbitMQPublishing(t *testing.T) {
	now := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	t.Run("envelope sets id and time", func(t *testing.T) {
		msg := publishing("gamification.achievement.unlocked", []byte(samplePayload), now)

		assert.Equal(t, "6f1c3c1e-8a4a-4d43-9d1b-1f0f0b3b6c11", msg.MessageId)
		assert.True(t, msg.Timestamp.Equal(time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)))
		assert.Equal(t, "gamification.achievement.unlocked", msg.Type)
		assert.Equal(t, "kafeel", msg.AppId)
		assert.Equal(t, uint8(2), msg.DeliveryMode)
	})

	t.Run("raw payload keeps now", func(t *testing.T) {
		msg := publishing("k", []byte("not json"), now)

		assert.Empty(t, msg.MessageId)
		assert.Equal(t, now, msg.Timestamp)
		assert.Equal(t, []byte("not json"), msg.Body)
	})
}
