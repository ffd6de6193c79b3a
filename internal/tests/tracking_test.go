package tests

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"riderapp/internal/domain"
	"riderapp/internal/platform"
	"riderapp/internal/redis"
	"riderapp/internal/service"
)

func newTrackingService(ctx context.Context, api *MockRideAPI, store *MockSnapshotStore) *service.TrackingService {
	sink := service.NewMemorySink(64)
	gateway := service.NewUIGateway(sink, zap.NewNop())
	return service.NewTrackingService(ctx, api, NewMockLockStore(), store, gateway, testPollConfig, zap.NewNop())
}

func TestTracking_SettlementFetchesFinalPricing(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Completion and payment arrive through light polls only; the cashback
	// decision still needs the detail endpoint.
	api := NewMockRideAPI()
	api.StatusScript = []*platform.RideStatusResult{
		{RideID: "ride-1", RideStatus: statusPtr(domain.RideStatusInProgress)},
		{RideID: "ride-1", RideStatus: statusPtr(domain.RideStatusCompleted), PaymentStatus: paymentPtr(domain.PaymentStatusCompleted)},
	}
	api.DetailResult = &domain.Ride{
		ID:            "ride-1",
		Status:        domain.RideStatusCompleted,
		PaymentStatus: domain.PaymentStatusCompleted,
		Pricing:       &domain.FarePayload{TotalFare: 284},
		IsCashbackGet: true,
		Cashback:      25,
	}

	sink := service.NewMemorySink(64)
	gateway := service.NewUIGateway(sink, zap.NewNop())
	svc := service.NewTrackingService(ctx, api, NewMockLockStore(), NewMockSnapshotStore(), gateway, testPollConfig, zap.NewNop())
	defer svc.StopAll()

	session := svc.Start("ride-1", nil)

	select {
	case <-session.Poller.Done():
	case <-time.After(time.Second):
		t.Fatal("expected the ride to settle and polling to stop")
	}

	if atomic.LoadInt32(&api.DetailCallCount) == 0 {
		t.Error("expected settlement to fetch the final ride detail")
	}
	events := sink.Drain()
	if n := countEvents(events, service.EventCashbackSettled); n != 1 {
		t.Errorf("expected one cashback acknowledgment, got %d", n)
	}
	if n := countEvents(events, service.EventRatingPrompt); n != 1 {
		t.Errorf("expected one rating prompt, got %d", n)
	}
	if !session.Tracker.Terminal() {
		t.Error("expected the tracker to be terminal after settlement")
	}
}

func TestTracking_StartIsIdempotentPerRide(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := newTrackingService(ctx, NewMockRideAPI(), NewMockSnapshotStore())
	defer svc.StopAll()

	first := svc.Start("ride-1", nil)
	second := svc.Start("ride-1", nil)
	if first != second {
		t.Error("expected the same session for repeated starts")
	}
}

func TestTracking_SnapshotFallsBackToCache(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMockSnapshotStore()
	detailJSON, _ := json.Marshal(&domain.Ride{ID: "ride-9", Status: domain.RideStatusDriverArrived, OTP: "7310"})
	_ = store.Set(context.Background(), &redis.CachedSnapshot{
		RideID:       "ride-9",
		Status:       string(domain.RideStatusDriverArrived),
		DriverLat:    12.97,
		DriverLng:    77.59,
		HasDriverLoc: true,
		Sequence:     7,
		DetailJSON:   detailJSON,
	})

	svc := newTrackingService(ctx, NewMockRideAPI(), store)
	defer svc.StopAll()

	snap, err := svc.Snapshot(context.Background(), "ride-9")
	if err != nil {
		t.Fatalf("expected a cached snapshot, got: %v", err)
	}
	if snap.RideStatus != domain.RideStatusDriverArrived {
		t.Errorf("unexpected status: %s", snap.RideStatus)
	}
	if snap.DriverLocation == nil || snap.DriverLocation.Lat != 12.97 {
		t.Error("expected the driver location from the cache")
	}
	if snap.Detail == nil || snap.Detail.OTP != "7310" {
		t.Error("expected the ride detail from the cache")
	}
}

func TestTracking_UnknownRideIsNotFound(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := newTrackingService(ctx, NewMockRideAPI(), NewMockSnapshotStore())
	defer svc.StopAll()

	_, err := svc.Snapshot(context.Background(), "nope")
	if !errors.Is(err, service.ErrNoActiveRide) {
		t.Errorf("expected ErrNoActiveRide, got %v", err)
	}

	_, err = svc.Refresh(context.Background(), "nope")
	if !errors.Is(err, service.ErrNoActiveRide) {
		t.Errorf("expected ErrNoActiveRide for refresh, got %v", err)
	}
}

func TestTracking_ActiveRidePrefersFurthestAlong(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := NewMockRideAPI()
	svc := newTrackingService(ctx, api, NewMockSnapshotStore())
	defer svc.StopAll()

	searching := svc.Start("ride-a", nil)
	arrived := svc.Start("ride-b", nil)

	searching.Tracker.Apply(service.StatusUpdate{
		Seq:        searching.Tracker.NextSeq(),
		RideStatus: statusPtr(domain.RideStatusSearching),
	})
	arrived.Tracker.Apply(service.StatusUpdate{
		Seq:        arrived.Tracker.NextSeq(),
		RideStatus: statusPtr(domain.RideStatusDriverArrived),
	})

	id, ok := svc.ActiveRideID()
	if !ok || id != "ride-b" {
		t.Errorf("expected ride-b to be the active ride, got %q", id)
	}
}
