package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"riderapp/internal/config"
	"riderapp/internal/domain"
	"riderapp/internal/platform"
	"riderapp/internal/redis"
)

// StatusPoller drives the two polling cadences for one tracked ride: a
// light status poll on a fixed interval and an on-demand heavy detail
// fetch with retries. At most one poll request is in flight at a time.
type StatusPoller struct {
	rideID    string
	tracker   *RideTracker
	rides     platform.RideAPI
	locks     redis.LockStoreInterface
	snapshots redis.SnapshotStoreInterface
	gateway   *UIGateway
	cfg       config.PollConfig
	log       *zap.Logger

	inFlight atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewStatusPoller creates a poller bound to one ride's tracker.
func NewStatusPoller(
	rideID string,
	tracker *RideTracker,
	rides platform.RideAPI,
	locks redis.LockStoreInterface,
	snapshots redis.SnapshotStoreInterface,
	gateway *UIGateway,
	cfg config.PollConfig,
	log *zap.Logger,
) *StatusPoller {
	return &StatusPoller{
		rideID:    rideID,
		tracker:   tracker,
		rides:     rides,
		locks:     locks,
		snapshots: snapshots,
		gateway:   gateway,
		cfg:       cfg,
		log:       log,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the light polling loop until the ride reaches a terminal
// state, Stop is called, or the context is cancelled.
func (p *StatusPoller) Start(ctx context.Context) {
	go p.loop(ctx)
}

// Stop halts the polling loop. It is safe to call more than once.
func (p *StatusPoller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// Done is closed once the polling loop has exited.
func (p *StatusPoller) Done() <-chan struct{} {
	return p.doneCh
}

func (p *StatusPoller) loop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.cfg.LightInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.lightPoll(ctx)
			if p.tracker.Terminal() {
				return
			}
		}
	}
}

// lightPoll issues one status request. Failures are swallowed; the next
// tick retries. A tick that overlaps an in-flight request is skipped.
func (p *StatusPoller) lightPoll(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer p.inFlight.Store(false)

	acquired, err := p.locks.AcquirePollLock(ctx, p.rideID, p.cfg.LightInterval)
	if err != nil {
		p.log.Debug("poll lock unavailable", zap.String("ride_id", p.rideID), zap.Error(err))
	} else if !acquired {
		return
	}
	defer func() {
		if acquired {
			_ = p.locks.ReleasePollLock(ctx, p.rideID)
		}
	}()

	// The sequence is stamped before the request so a slow response loses
	// to any poll issued after it.
	seq := p.tracker.NextSeq()

	result, err := p.rides.RideStatus(ctx, p.rideID)
	if err != nil {
		p.log.Debug("light poll failed", zap.String("ride_id", p.rideID), zap.Error(err))
		return
	}

	p.apply(ctx, StatusUpdate{
		Seq:            seq,
		RideStatus:     result.RideStatus,
		PaymentStatus:  result.PaymentStatus,
		DriverLocation: result.DriverLocation,
	})
}

// Refresh performs the heavy detail fetch, retrying before giving up. On
// exhaustion the rider is told to retry and ErrDetailUnavailable is
// returned; the light cadence keeps running regardless.
func (p *StatusPoller) Refresh(ctx context.Context) (*domain.Ride, error) {
	var lastErr error
	for attempt := 0; attempt <= p.cfg.HeavyRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.cfg.HeavyBackoff):
			}
		}

		seq := p.tracker.NextSeq()
		detail, err := p.rides.RideDetail(ctx, p.rideID)
		if err != nil {
			lastErr = err
			p.log.Warn("detail fetch failed",
				zap.String("ride_id", p.rideID),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		p.apply(ctx, StatusUpdate{Seq: seq, Detail: detail})
		return detail, nil
	}

	p.gateway.NotifyRecoverableError(p.rideID, "Could not load ride details. Please try again.")
	p.log.Error("detail fetch exhausted retries", zap.String("ride_id", p.rideID), zap.Error(lastErr))
	return nil, ErrDetailUnavailable
}

func (p *StatusPoller) apply(ctx context.Context, u StatusUpdate) {
	p.tracker.Apply(u)
	p.persist(ctx)
}

// persist mirrors the merged snapshot into the shared cache. Cache write
// failures never disturb tracking.
func (p *StatusPoller) persist(ctx context.Context) {
	snap := p.tracker.Snapshot()

	cached := &redis.CachedSnapshot{
		RideID:        snap.RideID,
		Status:        string(snap.RideStatus),
		PaymentStatus: string(snap.PaymentStatus),
		Sequence:      snap.Seq,
	}
	if snap.DriverLocation != nil {
		cached.DriverLat = snap.DriverLocation.Lat
		cached.DriverLng = snap.DriverLocation.Lng
		cached.HasDriverLoc = true
	}
	if snap.Detail != nil {
		if data, err := json.Marshal(snap.Detail); err == nil {
			cached.DetailJSON = data
		}
	}

	if err := p.snapshots.Set(ctx, cached); err != nil {
		p.log.Debug("snapshot cache write failed", zap.String("ride_id", p.rideID), zap.Error(err))
	}
}
