package domain

import "time"

// RideStatus represents the server-reported status of a ride. Values match
// the platform wire format and arrive through the status poller.
type RideStatus string

const (
	RideStatusSearching      RideStatus = "searching"
	RideStatusDriverAssigned RideStatus = "driver_assigned"
	RideStatusDriverArrived  RideStatus = "driver_arrived"
	RideStatusInProgress     RideStatus = "in_progress"
	RideStatusCompleted      RideStatus = "completed"
	RideStatusCancelled      RideStatus = "cancelled"
)

// PaymentStatus represents the server-reported payment state of a ride.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsTerminal reports whether a ride status is final from the client's view.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// IsPreTrip reports whether the ride has not yet started moving.
// Cancellation is offered only in these states.
func (s RideStatus) IsPreTrip() bool {
	switch s {
	case RideStatusInProgress, RideStatusCompleted, RideStatusCancelled:
		return false
	default:
		return true
	}
}

// Rank orders statuses along the ride lifecycle. Cancelled is unranked; it
// is reachable from any pre-completed state.
func (s RideStatus) Rank() int {
	switch s {
	case RideStatusSearching:
		return 0
	case RideStatusDriverAssigned:
		return 1
	case RideStatusDriverArrived:
		return 2
	case RideStatusInProgress:
		return 3
	case RideStatusCompleted:
		return 4
	default:
		return -1
	}
}

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a named location with coordinates.
type Place struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// DriverInfo is the rider-visible projection of the assigned driver.
type DriverInfo struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	VehicleModel string  `json:"vehicle_model"`
	VehicleNo    string  `json:"vehicle_no"`
	Rating       float64 `json:"rating"`
}

// Ride is the client's read-mostly projection of the server-owned ride
// entity. It is mutated only by merging poll responses; the backend is the
// single source of truth and the snapshot may be stale between polls.
type Ride struct {
	ID            string
	Status        RideStatus
	PaymentStatus PaymentStatus
	Pickup        Place
	Drop          Place
	Driver        *DriverInfo
	Pricing       *FarePayload
	OTP           string
	IsCashbackGet bool
	Cashback      int64
	CreatedAt     time.Time
}
