// Package status stores the tracker's live status for the query surface.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

// DefaultKey is the Redis key holding the live status.
const DefaultKey = "kafeel:status:live"

// RedisStore keeps the latest status in Redis so other processes can read it.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a store. Entries expire after ttl so a crashed
// tracker does not report a stale session forever; 0 disables expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: DefaultKey, ttl: ttl}
}

func (s *RedisStore) Publish(ctx context.Context, st domain.LiveStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store status: %w", err)
	}
	return nil
}

func (s *RedisStore) Latest(ctx context.Context) (*domain.LiveStatus, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load status: %w", err)
	}

	var st domain.LiveStatus
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &st, nil
}

// MemoryStore keeps the status in process. It is used when Redis is not
// configured.
type MemoryStore struct {
	mu     sync.RWMutex
	status *domain.LiveStatus
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Publish(_ context.Context, st domain.LiveStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = &st
	return nil
}

func (s *MemoryStore) Latest(context.Context) (*domain.LiveStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status == nil {
		return nil, nil
	}
	st := *s.status
	return &st, nil
}
