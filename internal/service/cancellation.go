package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"riderapp/internal/domain"
	"riderapp/internal/platform"
	"riderapp/internal/redis"
)

// CancellationServiceInterface defines the ride cancellation operations.
type CancellationServiceInterface interface {
	Reasons(ctx context.Context, reasonType string) ([]domain.CancelReason, error)
	Select(rideID, reasonID string) error
	Selection(rideID string) (domain.CancelReason, bool)
	Cancel(ctx context.Context, rideID string) error
}

// CancellationService runs the rider-initiated cancellation flow: reason
// list, reason selection, and the cancel call itself. The selection
// survives a failed cancel so the rider retries without re-picking.
type CancellationService struct {
	mu       sync.Mutex
	reasons  map[string]domain.CancelReason
	selected map[string]domain.CancelReason

	rides     platform.RideAPI
	tracking  TrackingServiceInterface
	snapshots redis.SnapshotStoreInterface
	gateway   *UIGateway
	log       *zap.Logger
}

var _ CancellationServiceInterface = (*CancellationService)(nil)

// NewCancellationService creates a new CancellationService.
func NewCancellationService(
	rides platform.RideAPI,
	tracking TrackingServiceInterface,
	snapshots redis.SnapshotStoreInterface,
	gateway *UIGateway,
	log *zap.Logger,
) *CancellationService {
	return &CancellationService{
		reasons:   make(map[string]domain.CancelReason),
		selected:  make(map[string]domain.CancelReason),
		rides:     rides,
		tracking:  tracking,
		snapshots: snapshots,
		gateway:   gateway,
		log:       log,
	}
}

// Reasons fetches the cancellation reasons for a flow type and remembers
// them for selection validation.
func (s *CancellationService) Reasons(ctx context.Context, reasonType string) ([]domain.CancelReason, error) {
	reasons, err := s.rides.CancelReasons(ctx, reasonType)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, r := range reasons {
		s.reasons[r.ID] = r
	}
	s.mu.Unlock()

	return reasons, nil
}

// Select records the rider's chosen reason for a ride.
func (s *CancellationService) Select(rideID, reasonID string) error {
	if reasonID == "" {
		return ErrNoReasonSelected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reason, ok := s.reasons[reasonID]
	if !ok {
		return ErrUnknownReason
	}
	s.selected[rideID] = reason
	return nil
}

// Selection returns the stored reason for a ride.
func (s *CancellationService) Selection(rideID string) (domain.CancelReason, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reason, ok := s.selected[rideID]
	return reason, ok
}

// Cancel cancels the ride with the stored reason. Cancellation is allowed
// only before the trip starts. On failure the selection stays put; on
// success it is cleared, tracking ends, and the ride views reload.
func (s *CancellationService) Cancel(ctx context.Context, rideID string) error {
	s.mu.Lock()
	reason, ok := s.selected[rideID]
	s.mu.Unlock()
	if !ok {
		return ErrNoReasonSelected
	}

	snap, err := s.tracking.Snapshot(ctx, rideID)
	if err != nil {
		return err
	}
	if !snap.RideStatus.IsPreTrip() {
		return ErrCancelNotAllowed
	}

	err = s.rides.CancelRide(ctx, platform.CancelRideRequest{
		RideID:   rideID,
		CancelBy: "rider",
		ReasonID: reason.ID,
		Reason:   reason.Name,
	})
	if err != nil {
		s.log.Warn("cancel failed", zap.String("ride_id", rideID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	delete(s.selected, rideID)
	s.mu.Unlock()

	s.tracking.Stop(rideID)
	if cerr := s.snapshots.Invalidate(ctx, rideID); cerr != nil {
		s.log.Debug("snapshot invalidation failed", zap.String("ride_id", rideID), zap.Error(cerr))
	}
	s.gateway.RefreshRideViews()

	s.log.Info("ride cancelled",
		zap.String("ride_id", rideID),
		zap.String("reason_id", reason.ID),
	)
	return nil
}
