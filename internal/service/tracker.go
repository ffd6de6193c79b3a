package service

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"riderapp/internal/domain"
)

// SearchController is notified when tracking observes transitions the
// booking flow must react to. The booking coordinator implements it to
// tear down its search timers.
type SearchController interface {
	OnDriverAssigned(rideID string)
	OnRideCancelled(rideID string)
}

// RideTracker merges status updates for one ride and drives the state
// machine. Each state entry fires its side effects exactly once, no matter
// how many polls report the same state.
type RideTracker struct {
	mu       sync.Mutex
	snapshot Snapshot
	fired    map[domain.RideStatus]bool

	paymentPrompted bool
	settled         bool

	refetch func() (*domain.Ride, error)

	seq atomic.Uint64

	gateway    *UIGateway
	controller SearchController
	log        *zap.Logger
}

// NewRideTracker creates a tracker for one ride.
func NewRideTracker(rideID string, gateway *UIGateway, controller SearchController, log *zap.Logger) *RideTracker {
	return &RideTracker{
		snapshot:   Snapshot{RideID: rideID},
		fired:      make(map[domain.RideStatus]bool),
		gateway:    gateway,
		controller: controller,
		log:        log,
	}
}

// SetRefetch installs the heavy detail fetch that settlement uses to load
// the final pricing before branching on cashback.
func (t *RideTracker) SetRefetch(fn func() (*domain.Ride, error)) {
	t.mu.Lock()
	t.refetch = fn
	t.mu.Unlock()
}

// NextSeq issues the sequence number for the next poll. The poller stamps
// it before the request goes out, so late responses from earlier polls
// lose to newer ones.
func (t *RideTracker) NextSeq() uint64 {
	return t.seq.Add(1)
}

// Snapshot returns a copy of the current merged view.
func (t *RideTracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

// Apply merges an update and fires any side effects the resulting
// transition owes. Effects run outside the lock.
func (t *RideTracker) Apply(u StatusUpdate) {
	t.mu.Lock()

	prev := t.snapshot.RideStatus
	if u.RideStatus != nil && !t.admissible(prev, *u.RideStatus) {
		t.log.Debug("discarding backward status transition",
			zap.String("ride_id", t.snapshot.RideID),
			zap.String("from", string(prev)),
			zap.String("to", string(*u.RideStatus)),
		)
		u.RideStatus = nil
	}

	// A laggy detail response carries its own status; it obeys the same
	// ordering as the light polls.
	if u.Detail != nil && u.Detail.Status != "" && !t.admissible(prev, u.Detail.Status) {
		t.log.Debug("discarding backward status from detail",
			zap.String("ride_id", t.snapshot.RideID),
			zap.String("from", string(prev)),
			zap.String("to", string(u.Detail.Status)),
		)
		detail := *u.Detail
		detail.Status = prev
		u.Detail = &detail
	}

	if !t.snapshot.merge(u) {
		t.mu.Unlock()
		return
	}

	effects := t.collectEffects(prev)
	t.mu.Unlock()

	for _, fn := range effects {
		fn()
	}
}

// admissible reports whether a status transition may be applied. The trip
// only moves forward; cancellation is reachable from any pre-trip state.
func (t *RideTracker) admissible(from, to domain.RideStatus) bool {
	if to == domain.RideStatusCancelled {
		return from == "" || from.IsPreTrip() || from == domain.RideStatusCancelled
	}
	if from == "" || from == domain.RideStatusCancelled {
		return from == ""
	}
	return to.Rank() >= from.Rank()
}

// collectEffects gathers the side effects owed by the current snapshot.
// Caller holds the lock; the returned closures must run after release.
func (t *RideTracker) collectEffects(prev domain.RideStatus) []func() {
	var effects []func()
	snap := t.snapshot
	rideID := snap.RideID

	status := snap.RideStatus
	if status != prev && status != "" && !t.fired[status] {
		t.fired[status] = true

		switch status {
		case domain.RideStatusDriverAssigned:
			otp := ""
			if snap.Detail != nil {
				otp = snap.Detail.OTP
			}
			effects = append(effects, func() {
				t.controller.OnDriverAssigned(rideID)
				t.gateway.NavigateToTracking(rideID, otp)
			})
		case domain.RideStatusCancelled:
			effects = append(effects, func() {
				t.controller.OnRideCancelled(rideID)
				t.gateway.NotifyRideCancelled(rideID)
			})
		}
	}

	if status == domain.RideStatusCompleted {
		if snap.PaymentStatus != domain.PaymentStatusCompleted && !t.paymentPrompted {
			t.paymentPrompted = true
			amount := int64(0)
			if snap.Detail != nil && snap.Detail.Pricing != nil {
				amount = snap.Detail.Pricing.TotalFare
			}
			effects = append(effects, func() {
				t.gateway.PromptPayment(rideID, amount)
			})
		}

		// Settlement waits for both the completed status and the payment
		// confirmation, whichever poll delivers the second one.
		if snap.PaymentStatus == domain.PaymentStatusCompleted && !t.settled {
			t.settled = true
			detail := snap.Detail
			refetch := t.refetch
			effects = append(effects, func() {
				// The cashback decision needs the final pricing, which only
				// the detail endpoint carries. One fetch; if it fails the
				// last merged detail stands.
				if refetch != nil {
					if fresh, err := refetch(); err == nil && fresh != nil {
						detail = fresh
					}
				}
				if detail != nil && detail.IsCashbackGet && detail.Cashback > 0 {
					t.gateway.AcknowledgeCashback(rideID, detail.Cashback)
				}
				t.gateway.PromptRating(rideID)
				t.gateway.RefreshRideViews()
			})
		}
	}

	return effects
}

// Terminal reports whether the ride has reached a terminal state and
// settlement, if owed, has fired.
func (t *RideTracker) Terminal() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.snapshot.RideStatus {
	case domain.RideStatusCancelled:
		return true
	case domain.RideStatusCompleted:
		return t.settled
	default:
		return false
	}
}
