package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"riderapp/internal/domain"
)

// EventType represents the type of UI event.
type EventType string

const (
	EventNavigateTracking EventType = "NAVIGATE_TRACKING"
	EventRideCancelled    EventType = "RIDE_CANCELLED"
	EventPaymentPrompt    EventType = "PAYMENT_PROMPT"
	EventCashbackSettled  EventType = "CASHBACK_SETTLED"
	EventRatingPrompt     EventType = "RATING_PROMPT"
	EventNoDriversFound   EventType = "NO_DRIVERS_FOUND"
	EventPoolingEnabled   EventType = "POOLING_ENABLED"
	EventBookingHandoff   EventType = "BOOKING_HANDOFF"
	EventRecoverableError EventType = "RECOVERABLE_ERROR"
	EventRefreshViews     EventType = "REFRESH_VIEWS"
)

// Event is a UI side effect emitted by the orchestration core. The screens
// are external collaborators: they drain events and perform the actual
// navigation, modal, and refresh work.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	RideID    string                 `json:"ride_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// EventSink receives published events.
type EventSink interface {
	Publish(event Event)
}

// UIGateway builds and publishes UI events.
type UIGateway struct {
	sink EventSink
	log  *zap.Logger
}

// NewUIGateway creates a new UIGateway.
func NewUIGateway(sink EventSink, log *zap.Logger) *UIGateway {
	return &UIGateway{sink: sink, log: log}
}

// NavigateToTracking tells the UI to open the live-tracking view with the
// ride handle the tracking screen needs.
func (g *UIGateway) NavigateToTracking(rideID, otp string) {
	g.publish(Event{
		Type:   EventNavigateTracking,
		RideID: rideID,
		Data:   map[string]interface{}{"otp": otp},
	})
}

// NotifyRideCancelled surfaces a blocking cancellation notice; the UI
// returns to the home context after dismissal.
func (g *UIGateway) NotifyRideCancelled(rideID string) {
	g.publish(Event{Type: EventRideCancelled, RideID: rideID})
}

// PromptPayment shows the payment-collection prompt for an unpaid
// completed ride.
func (g *UIGateway) PromptPayment(rideID string, amount int64) {
	g.publish(Event{
		Type:   EventPaymentPrompt,
		RideID: rideID,
		Data:   map[string]interface{}{"amount": amount},
	})
}

// AcknowledgeCashback shows the first-ride cashback settlement
// acknowledgment.
func (g *UIGateway) AcknowledgeCashback(rideID string, amount int64) {
	g.publish(Event{
		Type:   EventCashbackSettled,
		RideID: rideID,
		Data:   map[string]interface{}{"amount": amount},
	})
}

// PromptRating opens the rating prompt for a settled ride.
func (g *UIGateway) PromptRating(rideID string) {
	g.publish(Event{Type: EventRatingPrompt, RideID: rideID})
}

// NotifyNoDriversFound surfaces the search-timeout condition.
func (g *UIGateway) NotifyNoDriversFound(rideID string) {
	g.publish(Event{Type: EventNoDriversFound, RideID: rideID})
}

// NotifyPoolingEnabled flags that the search has broadened. Display and
// telemetry only; matching behavior is unchanged.
func (g *UIGateway) NotifyPoolingEnabled(rideID string) {
	g.publish(Event{Type: EventPoolingEnabled, RideID: rideID})
}

// HandoffBooking routes an intercity or book-later request to the separate
// confirmation flow, carrying the computed fare payload.
func (g *UIGateway) HandoffBooking(fare *domain.FarePayload, reason string) {
	g.publish(Event{
		Type: EventBookingHandoff,
		Data: map[string]interface{}{"fare": fare, "reason": reason},
	})
}

// NotifyRecoverableError surfaces a user-retriable failure.
func (g *UIGateway) NotifyRecoverableError(rideID, message string) {
	g.publish(Event{
		Type:   EventRecoverableError,
		RideID: rideID,
		Data:   map[string]interface{}{"message": message},
	})
}

// RefreshRideViews tells the UI to reload the active-ride and
// available-rides views.
func (g *UIGateway) RefreshRideViews() {
	g.publish(Event{Type: EventRefreshViews})
}

func (g *UIGateway) publish(event Event) {
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now()

	g.log.Info("ui event",
		zap.String("type", string(event.Type)),
		zap.String("ride_id", event.RideID),
	)
	g.sink.Publish(event)
}

// MemorySink is a bounded in-memory event buffer. The UI shell drains it
// through the events endpoint; when the buffer overflows, the oldest events
// are dropped first.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewMemorySink creates a MemorySink holding at most limit events.
func NewMemorySink(limit int) *MemorySink {
	if limit <= 0 {
		limit = 256
	}
	return &MemorySink{limit: limit}
}

// Publish appends an event, evicting the oldest on overflow.
func (s *MemorySink) Publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	if len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
}

// Drain returns all buffered events and clears the buffer.
func (s *MemorySink) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.events
	s.events = nil
	return out
}
