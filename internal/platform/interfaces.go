package platform

import (
	"context"

	"riderapp/internal/domain"
)

// QuoteRequest asks the platform for vehicle and rental options.
type QuoteRequest struct {
	Pickup       domain.Place `json:"pickup"`
	Drop         domain.Place `json:"drop"`
	DistanceKm   float64      `json:"distance_km"`
	DurationMins int          `json:"duration_mins"`
}

// QuoteResult is the platform's quote response: the selectable options plus
// the platform-wide discount percentage in effect.
type QuoteResult struct {
	Options             []domain.RideQuoteOption `json:"options"`
	PlatformDiscountPct int                      `json:"platform_discount_pct"`
}

// RecalculateRentalRequest asks for a rental package price at a new duration.
type RecalculateRentalRequest struct {
	RentalType         string  `json:"rental_type"`
	OriginalHours      int     `json:"original_hours"`
	AdditionalHours    int     `json:"additional_hours"`
	OriginalDistanceKm float64 `json:"original_distance_km"`
	CurrentFare        int64   `json:"current_fare"`
}

// SubmitRideRequest is the full ride-request payload.
type SubmitRideRequest struct {
	VehicleTypeID string              `json:"vehicle_type_id"`
	Pickup        domain.Place        `json:"pickup"`
	Drop          domain.Place        `json:"drop"`
	PaymentMethod string              `json:"payment_method"`
	Fare          *domain.FarePayload `json:"fare"`
	IsRental      bool                `json:"is_rental"`
	RentalHours   int                 `json:"rental_hours,omitempty"`
	CouponCode    string              `json:"coupon_code,omitempty"`
}

// SubmitRideResult is the platform's acknowledgment of a submitted ride.
type SubmitRideResult struct {
	RideID string            `json:"ride_id"`
	OTP    string            `json:"otp"`
	Status domain.RideStatus `json:"ride_status"`
}

// RideStatusResult is the lightweight status response. Fields are pointers:
// the platform may omit any of them and an omitted field must not erase a
// previously known value when merged into the snapshot.
type RideStatusResult struct {
	RideID         string                `json:"ride_id"`
	RideStatus     *domain.RideStatus    `json:"ride_status"`
	DriverLocation *domain.LatLng        `json:"driver_location"`
	PaymentStatus  *domain.PaymentStatus `json:"payment_status"`
}

// CancelRideRequest cancels a ride after driver assignment.
type CancelRideRequest struct {
	RideID   string `json:"ride_id"`
	CancelBy string `json:"cancel_by"`
	ReasonID string `json:"reason_id"`
	Reason   string `json:"reason"`
}

// QuoteAPI covers fare quoting, rental recalculation, and the rider's
// wallet balance.
type QuoteAPI interface {
	QuoteOptions(ctx context.Context, req QuoteRequest) (*QuoteResult, error)
	RecalculateRental(ctx context.Context, req RecalculateRentalRequest) (*domain.RentalQuote, error)
	WalletBalance(ctx context.Context) (int64, error)
}

// RideAPI covers the ride lifecycle: submission, the two status fetch
// cadences, and cancellation.
type RideAPI interface {
	SubmitRide(ctx context.Context, req SubmitRideRequest) (*SubmitRideResult, error)
	RideStatus(ctx context.Context, rideID string) (*RideStatusResult, error)
	RideDetail(ctx context.Context, rideID string) (*domain.Ride, error)
	CancelSearch(ctx context.Context, rideID string) error
	CancelRide(ctx context.Context, req CancelRideRequest) error
	CancelReasons(ctx context.Context, reasonType string) ([]domain.CancelReason, error)
}

// ChatAPI covers the per-ride chat thread.
type ChatAPI interface {
	Messages(ctx context.Context, rideID string) ([]domain.ChatMessage, error)
	SendMessage(ctx context.Context, rideID string, from domain.ChatSender, text string) (*domain.ChatMessage, error)
}

// Ensure the concrete client implements all platform interfaces.
var (
	_ QuoteAPI = (*Client)(nil)
	_ RideAPI  = (*Client)(nil)
	_ ChatAPI  = (*Client)(nil)
)
