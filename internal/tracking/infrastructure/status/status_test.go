package status

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

func sampleStatus() domain.LiveStatus {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	open := domain.Open(domain.App{ID: "com.apple.dt.Xcode", DisplayName: "Xcode"}, start)
	return domain.ActiveStatus(open, domain.CategoryProductive, start.Add(time.Minute))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Publish(ctx, sampleStatus()))
	got, err = store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Xcode", got.DisplayName)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("KAFEEL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("KAFEEL_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	store.key = "kafeel:test:" + t.Name()
	defer client.Del(ctx, store.key)

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := sampleStatus()
	require.NoError(t, store.Publish(ctx, want))

	got, err = store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.AppID, got.AppID)
	assert.Equal(t, domain.TrackerActive, got.State)
	assert.True(t, want.Since.Equal(*got.Since))
}
