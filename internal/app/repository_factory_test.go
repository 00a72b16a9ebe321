package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/database/dbtest"
	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/eventbus"
	trackingDomain "github.com/felixgeelhaar/kafeel/internal/tracking/domain"
	"github.com/felixgeelhaar/kafeel/pkg/config"
	"github.com/felixgeelhaar/kafeel/pkg/observability"
)

// unknownDriverConnection reports a driver the factory does not support.
type unknownDriverConnection struct {
	database.Connection
}

func (unknownDriverConnection) Driver() database.Driver {
	return database.Driver("mysql")
}

func TestNewRepositoryFactory(t *testing.T) {
	t.Run("requires a connection", func(t *testing.T) {
		_, err := NewRepositoryFactory(nil, time.UTC)
		assert.Error(t, err)
	})

	t.Run("rejects unsupported drivers", func(t *testing.T) {
		_, err := NewRepositoryFactory(unknownDriverConnection{}, time.UTC)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported driver")
	})

	t.Run("defaults to local time", func(t *testing.T) {
		f, err := NewRepositoryFactory(dbtest.NewSQLite(t), nil)
		require.NoError(t, err)
		assert.Equal(t, time.Local, f.loc)
		assert.Equal(t, database.DriverSQLite, f.Driver())
	})
}

func TestRepositoryFactory_Repositories(t *testing.T) {
	ctx := context.Background()
	f, err := NewRepositoryFactory(dbtest.NewSQLite(t), time.UTC)
	require.NoError(t, err)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	sessions := f.SessionRepository()
	require.NoError(t, sessions.Save(ctx, &trackingDomain.ActivitySession{
		ID:          uuid.New(),
		AppID:       "editor",
		DisplayName: "Editor",
		Start:       start,
		End:         start.Add(time.Hour),
	}))
	found, err := sessions.FindOverlapping(ctx, start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, found, 1)

	stores := f.GamificationStores()
	streak, err := stores.Streaks.GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Zero(t, streak.CurrentDays)

	profile, err := stores.Profiles.GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Zero(t, profile.TotalXP)

	first, err := f.DailyScoreRepository().FirstDay(ctx)
	require.NoError(t, err)
	assert.Nil(t, first)

	pending, err := f.OutboxRepository().CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)

	mappings, err := f.CategoryRepository().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, mappings)

	assert.NotNil(t, f.UnitOfWork())
}

func TestNewEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("no broker delivers in process", func(t *testing.T) {
		pub, err := NewEventPublisher(&config.Config{EventBroker: config.BrokerNone}, logger, nil)
		require.NoError(t, err)
		assert.IsType(t, &eventbus.InProcessBus{}, pub)
	})

	t.Run("kafka is wrapped in a breaker", func(t *testing.T) {
		pub, err := NewEventPublisher(&config.Config{
			EventBroker:  config.BrokerKafka,
			KafkaBrokers: []string{"localhost:9092"},
			KafkaTopic:   "kafeel.events",
		}, logger, nil)
		require.NoError(t, err)
		breaker, ok := pub.(*eventbus.BreakerPublisher)
		require.True(t, ok)
		assert.Equal(t, "closed", breaker.State())
		require.NoError(t, pub.Close())
	})

	t.Run("kafka without topic fails outside development", func(t *testing.T) {
		_, err := NewEventPublisher(&config.Config{
			AppEnv:       "production",
			EventBroker:  config.BrokerKafka,
			KafkaBrokers: []string{"localhost:9092"},
		}, logger, nil)
		assert.Error(t, err)
	})

	t.Run("development falls back in process", func(t *testing.T) {
		pub, err := NewEventPublisher(&config.Config{
			AppEnv:      "development",
			EventBroker: config.BrokerKafka,
		}, logger, nil)
		require.NoError(t, err)
		assert.IsType(t, &eventbus.InProcessBus{}, pub)
	})
}

func TestNewInProcessPublisher_CountsEvents(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	bus := NewInProcessPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)

	payload := []byte(`{"event_id":"` + uuid.NewString() + `","routing_key":"gamification.level.reached","occurred_at":"2026-03-02T09:00:00Z"}`)
	require.NoError(t, bus.Publish(context.Background(), "gamification.level.reached", payload))

	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsConsumed,
		observability.T("routing_key", "gamification.level.reached")))
}
