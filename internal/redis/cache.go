package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore caches the latest ride snapshot so a restarted instance (or
// a second one behind a load balancer) can serve reads without waiting a
// poll cycle. The cache is never authoritative; the poller overwrites it on
// every applied update.
type SnapshotStore struct {
	client *redis.Client
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// SnapshotTTL bounds how stale a cached snapshot may be served. A live ride
// is re-polled every few seconds, so anything older is abandoned state.
const SnapshotTTL = 5 * time.Minute

const snapshotPrefix = "cache:ride-snapshot:"

// CachedSnapshot is the serialized form of a ride snapshot.
type CachedSnapshot struct {
	RideID        string  `json:"ride_id"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	DriverLat     float64 `json:"driver_lat"`
	DriverLng     float64 `json:"driver_lng"`
	HasDriverLoc  bool    `json:"has_driver_loc"`
	Sequence      uint64  `json:"sequence"`
	DetailJSON    []byte  `json:"detail_json,omitempty"`
}

// Get retrieves a cached snapshot. A cache miss returns (nil, nil).
func (s *SnapshotStore) Get(ctx context.Context, rideID string) (*CachedSnapshot, error) {
	data, err := s.client.Get(ctx, snapshotPrefix+rideID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var snap CachedSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Set stores a snapshot, replacing any previous one for the ride.
func (s *SnapshotStore) Set(ctx context.Context, snap *CachedSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snapshotPrefix+snap.RideID, data, SnapshotTTL).Err()
}

// Invalidate removes a ride's cached snapshot.
func (s *SnapshotStore) Invalidate(ctx context.Context, rideID string) error {
	return s.client.Del(ctx, snapshotPrefix+rideID).Err()
}
