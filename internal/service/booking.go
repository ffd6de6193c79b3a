package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"riderapp/internal/config"
	"riderapp/internal/domain"
	"riderapp/internal/platform"
)

// Booking flow states.
type BookingState string

const (
	BookingIdle       BookingState = "idle"
	BookingSubmitting BookingState = "submitting"
	BookingSearching  BookingState = "searching"
	BookingAssigned   BookingState = "assigned"
	BookingCancelled  BookingState = "cancelled"
	BookingTimedOut   BookingState = "timed_out"
)

// Timer names inside the booking flow.
const (
	timerPoolingEscalation = "pooling-escalation"
	timerSearchTimeout     = "search-timeout"
)

// BookRequest carries the confirmed selection for submission.
type BookRequest struct {
	VehicleTypeID string
	Pickup        domain.Place
	Drop          domain.Place
	PaymentMethod string
	Fare          *domain.FarePayload
	CouponCode    string
	Intercity     bool
	BookLater     bool
}

// BookResult is the outcome of a submission.
type BookResult struct {
	RideID    string       `json:"ride_id,omitempty"`
	OTP       string       `json:"otp,omitempty"`
	State     BookingState `json:"state"`
	HandedOff bool         `json:"handed_off,omitempty"`
}

// BookingStatus is the flow's observable state.
type BookingStatus struct {
	State          BookingState `json:"state"`
	RideID         string       `json:"ride_id,omitempty"`
	PoolingEnabled bool         `json:"pooling_enabled"`
}

// BookingServiceInterface defines the booking flow operations.
type BookingServiceInterface interface {
	Book(ctx context.Context, req BookRequest) (*BookResult, error)
	CancelSearch(ctx context.Context) error
	Status() BookingStatus
}

// BookingService coordinates one booking at a time: submission, the
// searching window with its escalation and timeout timers, and the
// transition out of searching. It implements SearchController so the
// tracker can end the search when the poller observes an assignment or a
// cancellation first.
type BookingService struct {
	mu      sync.Mutex
	state   BookingState
	rideID  string
	pooling bool
	aborted bool

	timers   *timerRegistry
	rides    platform.RideAPI
	tracking TrackingServiceInterface
	gateway  *UIGateway
	cfg      config.BookingConfig
	log      *zap.Logger
}

var (
	_ BookingServiceInterface = (*BookingService)(nil)
	_ SearchController        = (*BookingService)(nil)
)

// NewBookingService creates a new BookingService.
func NewBookingService(
	rides platform.RideAPI,
	tracking TrackingServiceInterface,
	gateway *UIGateway,
	cfg config.BookingConfig,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		state:    BookingIdle,
		timers:   newTimerRegistry(),
		rides:    rides,
		tracking: tracking,
		gateway:  gateway,
		cfg:      cfg,
		log:      log,
	}
}

// Book submits a confirmed selection. Intercity and scheduled requests are
// handed off to their own confirmation flows without touching the live
// booking state. Only one live booking may be in flight.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*BookResult, error) {
	if req.Fare == nil {
		return nil, ErrNoOptionSelected
	}

	if req.Intercity || req.BookLater {
		reason := "intercity"
		if req.BookLater {
			reason = "book_later"
		}
		s.gateway.HandoffBooking(req.Fare, reason)
		return &BookResult{State: BookingIdle, HandedOff: true}, nil
	}

	s.mu.Lock()
	if s.state == BookingSubmitting || s.state == BookingSearching {
		s.mu.Unlock()
		return nil, ErrBookingInProgress
	}
	s.state = BookingSubmitting
	s.pooling = false
	s.aborted = false
	s.rideID = ""
	s.mu.Unlock()

	result, err := s.rides.SubmitRide(ctx, platform.SubmitRideRequest{
		VehicleTypeID: req.VehicleTypeID,
		Pickup:        req.Pickup,
		Drop:          req.Drop,
		PaymentMethod: req.PaymentMethod,
		Fare:          req.Fare,
		IsRental:      req.Fare.IsRental,
		RentalHours:   req.Fare.RentalHours,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		s.mu.Lock()
		s.state = BookingIdle
		s.aborted = false
		s.mu.Unlock()

		if errors.Is(err, platform.ErrNoDriversFound) {
			s.gateway.NotifyNoDriversFound("")
		}
		return nil, err
	}

	s.mu.Lock()
	if s.aborted {
		s.aborted = false
		s.state = BookingCancelled
		s.mu.Unlock()

		// The rider backed out while the submit was in flight. The search
		// the platform just opened is killed before anything tracks it.
		if err := s.rides.CancelSearch(ctx, result.RideID); err != nil {
			s.log.Warn("post-abort search cancel failed", zap.String("ride_id", result.RideID), zap.Error(err))
		}
		s.gateway.RefreshRideViews()
		s.log.Info("submission aborted by rider", zap.String("ride_id", result.RideID))
		return &BookResult{RideID: result.RideID, State: BookingCancelled}, nil
	}
	s.state = BookingSearching
	s.rideID = result.RideID
	s.mu.Unlock()

	s.tracking.Start(result.RideID, s)
	s.armSearchTimers(result.RideID)

	s.log.Info("ride submitted",
		zap.String("ride_id", result.RideID),
		zap.Int64("total_fare", req.Fare.TotalFare),
	)
	return &BookResult{RideID: result.RideID, OTP: result.OTP, State: BookingSearching}, nil
}

// armSearchTimers schedules the pooling escalation and the search timeout.
// Both callbacks re-check that the same search is still live; a teardown
// can race the firing.
func (s *BookingService) armSearchTimers(rideID string) {
	s.timers.Schedule(timerPoolingEscalation, s.cfg.PoolingEscalationDelay, func() {
		s.mu.Lock()
		live := s.state == BookingSearching && s.rideID == rideID
		if live {
			s.pooling = true
		}
		s.mu.Unlock()

		if live {
			s.gateway.NotifyPoolingEnabled(rideID)
		}
	})

	s.timers.Schedule(timerSearchTimeout, s.cfg.SearchTimeout, func() {
		s.mu.Lock()
		live := s.state == BookingSearching && s.rideID == rideID
		if live {
			s.state = BookingTimedOut
		}
		s.mu.Unlock()
		if !live {
			return
		}

		s.timers.Teardown()
		s.tracking.Stop(rideID)

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CancelTimeout)
		defer cancel()
		if err := s.rides.CancelSearch(ctx, rideID); err != nil {
			s.log.Warn("search cancel after timeout failed", zap.String("ride_id", rideID), zap.Error(err))
		}

		s.gateway.NotifyNoDriversFound(rideID)
		s.log.Info("search timed out", zap.String("ride_id", rideID))
	})
}

// CancelSearch aborts the current search at the rider's request. Valid
// while submitting or searching. During submission the in-flight submit is
// marked aborted and the post-submit path tears it down.
func (s *BookingService) CancelSearch(ctx context.Context) error {
	s.mu.Lock()
	if s.state == BookingSubmitting {
		s.aborted = true
		s.mu.Unlock()
		s.log.Info("cancel requested while submitting")
		return nil
	}
	if s.state != BookingSearching {
		s.mu.Unlock()
		return ErrNotSearching
	}
	rideID := s.rideID
	s.state = BookingIdle
	s.rideID = ""
	s.pooling = false
	s.mu.Unlock()

	s.timers.Teardown()
	s.tracking.Stop(rideID)

	// Best effort. The search dies server-side on its own timeout even if
	// this call is lost.
	if err := s.rides.CancelSearch(ctx, rideID); err != nil {
		s.log.Warn("search cancel failed", zap.String("ride_id", rideID), zap.Error(err))
	}

	s.gateway.RefreshRideViews()
	s.log.Info("search cancelled by rider", zap.String("ride_id", rideID))
	return nil
}

// Status returns the flow's current state.
func (s *BookingService) Status() BookingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BookingStatus{State: s.state, RideID: s.rideID, PoolingEnabled: s.pooling}
}

// OnDriverAssigned ends the search when tracking observes an assignment.
func (s *BookingService) OnDriverAssigned(rideID string) {
	s.mu.Lock()
	live := s.state == BookingSearching && s.rideID == rideID
	if live {
		s.state = BookingAssigned
	}
	s.mu.Unlock()

	if live {
		s.timers.Teardown()
		s.log.Info("driver assigned during search", zap.String("ride_id", rideID))
	}
}

// OnRideCancelled ends the search when tracking observes a server-side
// cancellation.
func (s *BookingService) OnRideCancelled(rideID string) {
	s.mu.Lock()
	live := s.rideID == rideID && (s.state == BookingSearching || s.state == BookingAssigned)
	if live {
		s.state = BookingCancelled
	}
	s.mu.Unlock()

	if live {
		s.timers.Teardown()
		s.log.Info("ride cancelled during booking flow", zap.String("ride_id", rideID))
	}
}
