package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"riderapp/internal/config"
	"riderapp/internal/domain"
	"riderapp/internal/platform"
	"riderapp/internal/redis"
)

// RideSession is one tracked ride: a tracker holding the merged snapshot
// and the poller feeding it.
type RideSession struct {
	Tracker *RideTracker
	Poller  *StatusPoller
}

// TrackingServiceInterface defines the ride tracking operations.
type TrackingServiceInterface interface {
	Start(rideID string, controller SearchController) *RideSession
	Snapshot(ctx context.Context, rideID string) (*Snapshot, error)
	Refresh(ctx context.Context, rideID string) (*domain.Ride, error)
	Stop(rideID string)
	ActiveRideID() (string, bool)
}

// TrackingService manages the lifecycle of ride tracking sessions. One
// session exists per ride; starting an already-tracked ride returns the
// existing session.
type TrackingService struct {
	mu       sync.Mutex
	sessions map[string]*RideSession

	baseCtx   context.Context
	rides     platform.RideAPI
	locks     redis.LockStoreInterface
	snapshots redis.SnapshotStoreInterface
	gateway   *UIGateway
	cfg       config.PollConfig
	log       *zap.Logger
}

var _ TrackingServiceInterface = (*TrackingService)(nil)

// NewTrackingService creates a new TrackingService. Pollers inherit
// baseCtx, so they outlive the requests that start them and stop on
// shutdown.
func NewTrackingService(
	baseCtx context.Context,
	rides platform.RideAPI,
	locks redis.LockStoreInterface,
	snapshots redis.SnapshotStoreInterface,
	gateway *UIGateway,
	cfg config.PollConfig,
	log *zap.Logger,
) *TrackingService {
	return &TrackingService{
		sessions:  make(map[string]*RideSession),
		baseCtx:   baseCtx,
		rides:     rides,
		locks:     locks,
		snapshots: snapshots,
		gateway:   gateway,
		cfg:       cfg,
		log:       log,
	}
}

// Start begins tracking a ride and returns its session. The controller
// receives assignment and cancellation callbacks; pass nil when no search
// flow is waiting on them.
func (s *TrackingService) Start(rideID string, controller SearchController) *RideSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[rideID]; ok {
		return session
	}

	if controller == nil {
		controller = noopController{}
	}

	tracker := NewRideTracker(rideID, s.gateway, controller, s.log)
	poller := NewStatusPoller(rideID, tracker, s.rides, s.locks, s.snapshots, s.gateway, s.cfg, s.log)
	tracker.SetRefetch(func() (*domain.Ride, error) {
		return poller.Refresh(s.baseCtx)
	})

	session := &RideSession{Tracker: tracker, Poller: poller}
	s.sessions[rideID] = session

	poller.Start(s.baseCtx)
	s.log.Info("tracking started", zap.String("ride_id", rideID))
	return session
}

// Stop ends tracking for a ride.
func (s *TrackingService) Stop(rideID string) {
	s.mu.Lock()
	session, ok := s.sessions[rideID]
	if ok {
		delete(s.sessions, rideID)
	}
	s.mu.Unlock()

	if ok {
		session.Poller.Stop()
		s.log.Info("tracking stopped", zap.String("ride_id", rideID))
	}
}

// StopAll ends every tracking session. Called on shutdown.
func (s *TrackingService) StopAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*RideSession)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Poller.Stop()
	}
}

// ActiveRideID returns the ride currently being tracked, if any. When
// several are live, the one that has progressed furthest wins.
func (s *TrackingService) ActiveRideID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := ""
	bestRank := -2
	for id, session := range s.sessions {
		snap := session.Tracker.Snapshot()
		if snap.RideStatus.IsTerminal() {
			continue
		}
		if rank := snap.RideStatus.Rank(); rank > bestRank {
			best, bestRank = id, rank
		}
	}
	return best, best != ""
}

// Snapshot returns the merged view of a ride. A live session answers from
// memory; otherwise the shared cache is consulted so a restarted instance
// can still serve the read.
func (s *TrackingService) Snapshot(ctx context.Context, rideID string) (*Snapshot, error) {
	s.mu.Lock()
	session, ok := s.sessions[rideID]
	s.mu.Unlock()

	if ok {
		snap := session.Tracker.Snapshot()
		return &snap, nil
	}

	cached, err := s.snapshots.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if cached == nil {
		return nil, ErrNoActiveRide
	}

	snap := &Snapshot{
		RideID:        cached.RideID,
		Seq:           cached.Sequence,
		RideStatus:    domain.RideStatus(cached.Status),
		PaymentStatus: domain.PaymentStatus(cached.PaymentStatus),
	}
	if cached.HasDriverLoc {
		snap.DriverLocation = &domain.LatLng{Lat: cached.DriverLat, Lng: cached.DriverLng}
	}
	if len(cached.DetailJSON) > 0 {
		var detail domain.Ride
		if err := json.Unmarshal(cached.DetailJSON, &detail); err == nil {
			snap.Detail = &detail
		}
	}
	return snap, nil
}

// Refresh runs the heavy detail fetch for a tracked ride.
func (s *TrackingService) Refresh(ctx context.Context, rideID string) (*domain.Ride, error) {
	s.mu.Lock()
	session, ok := s.sessions[rideID]
	s.mu.Unlock()

	if !ok {
		return nil, ErrNoActiveRide
	}
	return session.Poller.Refresh(ctx)
}

// noopController satisfies SearchController for rides resumed outside the
// booking flow.
type noopController struct{}

func (noopController) OnDriverAssigned(string) {}
func (noopController) OnRideCancelled(string)  {}
