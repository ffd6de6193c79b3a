package redis

import (
	"context"
	"time"
)

// SnapshotStoreInterface defines the ride snapshot cache operations.
type SnapshotStoreInterface interface {
	Get(ctx context.Context, rideID string) (*CachedSnapshot, error)
	Set(ctx context.Context, snap *CachedSnapshot) error
	Invalidate(ctx context.Context, rideID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquirePollLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleasePollLock(ctx context.Context, rideID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ SnapshotStoreInterface = (*SnapshotStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
