package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquirePollLock attempts to acquire the per-ride poll lock. Light polls
// are serialized per ride; an instance that loses the race skips its tick
// instead of issuing a duplicate request.
func (s *LockStore) AcquirePollLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:ride-poll:%s", rideID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleasePollLock releases the poll lock for the given ride.
func (s *LockStore) ReleasePollLock(ctx context.Context, rideID string) error {
	key := fmt.Sprintf("lock:ride-poll:%s", rideID)

	return s.client.Del(ctx, key).Err()
}
