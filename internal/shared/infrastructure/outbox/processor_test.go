package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kafeel/internal/shared/domain"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

type testEvent struct {
	domain.BaseEvent
	Day string `json:"day"`
}

func newTestEvent(key string, at time.Time) testEvent {
	return testEvent{BaseEvent: domain.NewBaseEvent("streak", key, at), Day: "2026-04-01"}
}

func TestRecorderAndSQLRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(dbtest.NewSQLite(t))
	rec := NewRecorder(repo)

	t0 := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	first := newTestEvent("insights.day.evaluated", t0)
	second := newTestEvent("gamification.level.reached", t0.Add(time.Minute))
	require.NoError(t, rec.Record(ctx, second, nil, first))

	msgs, err := repo.GetUnpublished(ctx, t0.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.EventID(), msgs[0].EventID)
	assert.Equal(t, "insights.day.evaluated", msgs[0].RoutingKey)
	assert.Equal(t, "streak", msgs[0].AggregateType)
	assert.JSONEq(t, `"2026-04-01"`, string(mustField(t, msgs[0].Payload, "day")))

	t.Run("failed message waits for retry time", func(t *testing.T) {
		retryAt := t0.Add(2 * time.Hour)
		require.NoError(t, repo.MarkFailed(ctx, first.EventID(), "broker down", retryAt))

		pending, err := repo.GetUnpublished(ctx, t0.Add(time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, second.EventID(), pending[0].EventID)

		later, err := repo.GetUnpublished(ctx, retryAt, 10)
		require.NoError(t, err)
		require.Len(t, later, 2)
		assert.Equal(t, 1, later[0].RetryCount)
		require.NotNil(t, later[0].LastError)
		assert.Equal(t, "broker down", *later[0].LastError)
	})

	t.Run("published and dead messages leave the queue", func(t *testing.T) {
		require.NoError(t, repo.MarkPublished(ctx, first.EventID(), t0))
		require.NoError(t, repo.MarkDead(ctx, second.EventID(), "poison", t0))

		n, err := repo.CountPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		deleted, err := repo.DeleteOld(ctx, t0.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}

func TestProcessor_ProcessOnce(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	setup := func(t *testing.T, cfg ProcessorConfig) (*SQLRepository, *mockPublisher, *Processor, *observability.InMemoryMetrics) {
		repo := NewSQLRepository(dbtest.NewSQLite(t))
		pub := new(mockPublisher)
		metrics := observability.NewInMemoryMetrics()
		p := NewProcessor(repo, pub, cfg, nil, metrics)
		p.now = func() time.Time { return t0.Add(time.Hour) }
		return repo, pub, p, metrics
	}

	t.Run("publishes and marks messages", func(t *testing.T) {
		repo, pub, p, metrics := setup(t, DefaultProcessorConfig())
		event := newTestEvent("insights.day.evaluated", t0)
		require.NoError(t, NewRecorder(repo).Record(ctx, event))
		pub.On("Publish", mock.Anything, "insights.day.evaluated", mock.Anything).Return(nil)

		require.NoError(t, p.ProcessOnce(ctx))

		n, err := repo.CountPending(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, uint64(1), p.GetStats().PublishedCount)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsPublished,
			observability.T("routing_key", "insights.day.evaluated")))
		assert.Equal(t, 3600.0, metrics.GetGauge(observability.MetricOutboxLag))
	})

	t.Run("failure schedules retry then dead-letters", func(t *testing.T) {
		cfg := DefaultProcessorConfig()
		cfg.MaxRetries = 2
		repo, pub, p, _ := setup(t, cfg)
		require.NoError(t, NewRecorder(repo).Record(ctx, newTestEvent("k", t0)))
		pub.On("Publish", mock.Anything, "k", mock.Anything).Return(errors.New("connection reset"))

		require.NoError(t, p.ProcessOnce(ctx))
		assert.Equal(t, uint64(1), p.GetStats().FailedCount)

		p.now = func() time.Time { return t0.Add(2 * time.Hour) }
		require.NoError(t, p.ProcessOnce(ctx))
		assert.Equal(t, uint64(1), p.GetStats().DeadCount)

		n, err := repo.CountPending(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestProcessor_RetryBackoff(t *testing.T) {
	p := NewProcessor(nil, nil, ProcessorConfig{
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  10 * time.Second,
	}, nil, nil)

	assert.Equal(t, time.Second, p.retryBackoff(1))
	assert.Equal(t, 2*time.Second, p.retryBackoff(2))
	assert.Equal(t, 8*time.Second, p.retryBackoff(4))
	assert.Equal(t, 10*time.Second, p.retryBackoff(5))
	assert.Equal(t, 10*time.Second, p.retryBackoff(64))
}

func TestProcessor_StartStop(t *testing.T) {
	repo := NewSQLRepository(dbtest.NewSQLite(t))
	p := NewProcessor(repo, new(mockPublisher), ProcessorConfig{PollInterval: time.Hour}, nil, nil)

	p.Start(context.Background())
	p.Start(context.Background())
	assert.True(t, p.IsRunning())

	p.Stop()
	p.Stop()
	assert.False(t, p.IsRunning())
}

func TestNewMessage(t *testing.T) {
	event := newTestEvent("gamification.achievement.unlocked", time.Time{})
	msg, err := NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.NotEqual(t, uuid.Nil, msg.EventID)
	assert.False(t, msg.IsPublished())
	assert.False(t, msg.CreatedAt.IsZero())
}

func mustField(t *testing.T, payload []byte, key string) []byte {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &m))
	return m[key]
}
