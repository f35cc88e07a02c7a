package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store deduplicates terminal requests with a Redis SETNX claim. Keys expire
// after ttl so an abandoned terminal id cannot block forever.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Seen claims the key and reports whether it had already been claimed.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Forget releases a claim so a failed attempt can be retried under the same
// request id.
func (s *Store) Forget(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
