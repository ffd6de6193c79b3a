package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"riderapp/internal/config"
	"riderapp/internal/domain"
	"riderapp/internal/platform"
	"riderapp/internal/service"
)

var testPollConfig = config.PollConfig{
	LightInterval: 15 * time.Millisecond,
	HeavyRetries:  2,
	HeavyBackoff:  5 * time.Millisecond,
}

func newPoller(api *MockRideAPI, locks *MockLockStore, store *MockSnapshotStore) (*service.StatusPoller, *service.RideTracker, *service.MemorySink) {
	sink := service.NewMemorySink(64)
	gateway := service.NewUIGateway(sink, zap.NewNop())
	tracker := service.NewRideTracker("ride-1", gateway, &RecordingController{}, zap.NewNop())
	poller := service.NewStatusPoller("ride-1", tracker, api, locks, store, gateway, testPollConfig, zap.NewNop())
	return poller, tracker, sink
}

func TestPoller_LightPollDrivesTracker(t *testing.T) {
	t.Parallel()

	api := NewMockRideAPI()
	api.StatusScript = []*platform.RideStatusResult{
		{RideID: "ride-1", RideStatus: statusPtr(domain.RideStatusSearching)},
		{RideID: "ride-1", RideStatus: statusPtr(domain.RideStatusDriverAssigned)},
	}
	store := NewMockSnapshotStore()
	poller, tracker, _ := newPoller(api, NewMockLockStore(), store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	if !waitFor(time.Second, func() bool {
		return tracker.Snapshot().RideStatus == domain.RideStatusDriverAssigned
	}) {
		t.Fatal("expected the poller to reach driver_assigned")
	}

	cached, err := store.Get(context.Background(), "ride-1")
	if err != nil || cached == nil {
		t.Fatalf("expected a cached snapshot, got %v, %v", cached, err)
	}
	if cached.Status != string(domain.RideStatusDriverAssigned) {
		t.Errorf("expected cached status driver_assigned, got %s", cached.Status)
	}
}

func TestPoller_StopsOnTerminalState(t *testing.T) {
	t.Parallel()

	api := NewMockRideAPI()
	api.StatusScript = []*platform.RideStatusResult{
		{RideID: "ride-1", RideStatus: statusPtr(domain.RideStatusCancelled)},
	}
	poller, _, _ := newPoller(api, NewMockLockStore(), NewMockSnapshotStore())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)

	select {
	case <-poller.Done():
	case <-time.After(time.Second):
		t.Fatal("expected the poll loop to exit after cancellation")
	}
}

func TestPoller_LockDeniedSkipsTick(t *testing.T) {
	t.Parallel()

	api := NewMockRideAPI()
	locks := NewMockLockStore()
	locks.Deny = true
	poller, _, _ := newPoller(api, locks, NewMockSnapshotStore())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)

	waitFor(200*time.Millisecond, func() bool { return atomic.LoadInt32(&locks.AcquireCallCount) >= 3 })
	poller.Stop()
	<-poller.Done()

	if atomic.LoadInt32(&api.StatusCallCount) != 0 {
		t.Error("expected no status requests while the lock is denied")
	}
}

func TestPoller_SwallowsTransientErrors(t *testing.T) {
	t.Parallel()

	api := NewMockRideAPI()
	api.StatusError = platform.ErrUnavailable
	poller, tracker, _ := newPoller(api, NewMockLockStore(), NewMockSnapshotStore())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)

	waitFor(200*time.Millisecond, func() bool { return atomic.LoadInt32(&api.StatusCallCount) >= 2 })
	poller.Stop()
	<-poller.Done()

	if atomic.LoadInt32(&api.StatusCallCount) < 2 {
		t.Error("expected the poller to keep retrying through failures")
	}
	if tracker.Snapshot().RideStatus != "" {
		t.Error("expected no status to be applied from failed polls")
	}
}

func TestPoller_RefreshRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	api := NewMockRideAPI()
	api.DetailFailures = 2
	api.DetailResult = &domain.Ride{ID: "ride-1", Status: domain.RideStatusDriverArrived, OTP: "4821"}
	poller, tracker, _ := newPoller(api, NewMockLockStore(), NewMockSnapshotStore())

	detail, err := poller.Refresh(context.Background())
	if err != nil {
		t.Fatalf("expected refresh to succeed after retries, got: %v", err)
	}
	if detail.OTP != "4821" {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if api.DetailCallCount != 3 {
		t.Errorf("expected 3 detail calls, got %d", api.DetailCallCount)
	}
	if tracker.Snapshot().RideStatus != domain.RideStatusDriverArrived {
		t.Error("expected the detail to merge into the snapshot")
	}
}

func TestPoller_RefreshExhaustionSurfacesError(t *testing.T) {
	t.Parallel()

	api := NewMockRideAPI()
	api.DetailError = platform.ErrUnavailable
	poller, _, sink := newPoller(api, NewMockLockStore(), NewMockSnapshotStore())

	_, err := poller.Refresh(context.Background())
	if !errors.Is(err, service.ErrDetailUnavailable) {
		t.Fatalf("expected ErrDetailUnavailable, got %v", err)
	}

	// Initial attempt plus the configured retries.
	if api.DetailCallCount != 3 {
		t.Errorf("expected 3 detail calls, got %d", api.DetailCallCount)
	}
	if countEvents(sink.Drain(), service.EventRecoverableError) != 1 {
		t.Error("expected a recoverable-error event")
	}
}
