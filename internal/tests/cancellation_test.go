package tests

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"riderapp/internal/domain"
	"riderapp/internal/platform"
	"riderapp/internal/redis"
	"riderapp/internal/service"
)

func newCancellationService(api *MockRideAPI, tracking *MockTracking, store *MockSnapshotStore) (*service.CancellationService, *service.MemorySink) {
	sink := service.NewMemorySink(64)
	gateway := service.NewUIGateway(sink, zap.NewNop())
	return service.NewCancellationService(api, tracking, store, gateway, zap.NewNop()), sink
}

func seedReasons(t *testing.T, svc *service.CancellationService, api *MockRideAPI) {
	t.Helper()
	api.ReasonsList = []domain.CancelReason{
		{ID: "r1", Name: "Driver too far"},
		{ID: "r2", Name: "Changed my mind"},
	}
	if _, err := svc.Reasons(context.Background(), "before_pickup"); err != nil {
		t.Fatalf("fetching reasons failed: %v", err)
	}
}

func preTripTracking() *MockTracking {
	tracking := NewMockTracking()
	tracking.Snap = &service.Snapshot{RideID: "ride-1", RideStatus: domain.RideStatusDriverAssigned}
	return tracking
}

func TestCancellation_RequiresSelectedReason(t *testing.T) {
	t.Parallel()

	svc, _ := newCancellationService(NewMockRideAPI(), preTripTracking(), NewMockSnapshotStore())

	err := svc.Cancel(context.Background(), "ride-1")
	if !errors.Is(err, service.ErrNoReasonSelected) {
		t.Errorf("expected ErrNoReasonSelected, got %v", err)
	}
}

func TestCancellation_SelectValidatesReason(t *testing.T) {
	t.Parallel()

	api := NewMockRideAPI()
	svc, _ := newCancellationService(api, preTripTracking(), NewMockSnapshotStore())
	seedReasons(t, svc, api)

	if err := svc.Select("ride-1", ""); !errors.Is(err, service.ErrNoReasonSelected) {
		t.Errorf("expected ErrNoReasonSelected for empty reason, got %v", err)
	}
	if err := svc.Select("ride-1", "bogus"); !errors.Is(err, service.ErrUnknownReason) {
		t.Errorf("expected ErrUnknownReason, got %v", err)
	}
	if err := svc.Select("ride-1", "r1"); err != nil {
		t.Errorf("expected valid selection to succeed, got %v", err)
	}
}

func TestCancellation_BlockedOnceTripStarts(t *testing.T) {
	t.Parallel()

	api := NewMockRideAPI()
	tracking := NewMockTracking()
	tracking.Snap = &service.Snapshot{RideID: "ride-1", RideStatus: domain.RideStatusInProgress}
	svc, _ := newCancellationService(api, tracking, NewMockSnapshotStore())
	seedReasons(t, svc, api)

	if err := svc.Select("ride-1", "r1"); err != nil {
		t.Fatalf("selection failed: %v", err)
	}

	err := svc.Cancel(context.Background(), "ride-1")
	if !errors.Is(err, service.ErrCancelNotAllowed) {
		t.Errorf("expected ErrCancelNotAllowed, got %v", err)
	}
	if api.CancelRideCallCount != 0 {
		t.Error("expected no cancel call once the trip started")
	}
}

func TestCancellation_FailurePreservesSelection(t *testing.T) {
	t.Parallel()

	api := NewMockRideAPI()
	api.CancelRideError = platform.ErrUnavailable
	svc, _ := newCancellationService(api, preTripTracking(), NewMockSnapshotStore())
	seedReasons(t, svc, api)

	if err := svc.Select("ride-1", "r2"); err != nil {
		t.Fatalf("selection failed: %v", err)
	}

	err := svc.Cancel(context.Background(), "ride-1")
	if !errors.Is(err, platform.ErrUnavailable) {
		t.Fatalf("expected the platform error, got %v", err)
	}

	// The rider retries without picking again.
	if _, ok := svc.Selection("ride-1"); !ok {
		t.Fatal("expected the selection to survive a failed cancel")
	}

	api.mu.Lock()
	api.CancelRideError = nil
	api.mu.Unlock()

	if err := svc.Cancel(context.Background(), "ride-1"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestCancellation_SuccessClearsStateAndRefreshes(t *testing.T) {
	t.Parallel()

	api := NewMockRideAPI()
	tracking := preTripTracking()
	store := NewMockSnapshotStore()
	_ = store.Set(context.Background(), &redis.CachedSnapshot{
		RideID: "ride-1",
		Status: string(domain.RideStatusDriverAssigned),
	})

	svc, sink := newCancellationService(api, tracking, store)
	seedReasons(t, svc, api)

	if err := svc.Select("ride-1", "r1"); err != nil {
		t.Fatalf("selection failed: %v", err)
	}
	if err := svc.Cancel(context.Background(), "ride-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if api.LastCancelRequest.ReasonID != "r1" || api.LastCancelRequest.CancelBy != "rider" {
		t.Errorf("unexpected cancel request: %+v", api.LastCancelRequest)
	}
	if _, ok := svc.Selection("ride-1"); ok {
		t.Error("expected the selection to be cleared")
	}
	if tracking.StopCallCount != 1 {
		t.Error("expected tracking to stop")
	}
	if cached, _ := store.Get(context.Background(), "ride-1"); cached != nil {
		t.Error("expected the cached snapshot to be invalidated")
	}
	if countEvents(sink.Drain(), service.EventRefreshViews) != 1 {
		t.Error("expected a refresh event")
	}
}
