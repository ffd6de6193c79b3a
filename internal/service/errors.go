package service

import "errors"

var (
	// ErrNoOptionSelected is returned when a fare is computed or a booking
	// submitted without a selected vehicle option.
	ErrNoOptionSelected = errors.New("no vehicle option selected")

	// ErrInvalidCoupon is returned when a coupon code has no configured
	// discount rule or the coupon is inactive.
	ErrInvalidCoupon = errors.New("invalid coupon")

	// ErrInvalidRentalHours is returned when a rental recalculation is
	// requested for a non-positive hour count.
	ErrInvalidRentalHours = errors.New("invalid rental hours")

	// ErrBookingInProgress is returned when a submit is attempted while a
	// previous search is still active.
	ErrBookingInProgress = errors.New("booking already in progress")

	// ErrNotSearching is returned when cancel-before-assignment is called
	// outside the submitting/searching states.
	ErrNotSearching = errors.New("no active driver search")

	// ErrNoActiveRide is returned when an operation references a ride that
	// is not being tracked.
	ErrNoActiveRide = errors.New("no active ride")

	// ErrNoReasonSelected is returned when a cancellation is submitted
	// without a selected reason.
	ErrNoReasonSelected = errors.New("no cancellation reason selected")

	// ErrUnknownReason is returned when a reason id is not in the loaded
	// reference list.
	ErrUnknownReason = errors.New("unknown cancellation reason")

	// ErrCancelNotAllowed is returned when cancellation is attempted in a
	// state where it is no longer offered.
	ErrCancelNotAllowed = errors.New("ride can no longer be cancelled")

	// ErrEmptyMessage is returned when a blank chat message is rejected
	// before any network call.
	ErrEmptyMessage = errors.New("empty chat message")

	// ErrDetailUnavailable is returned when the heavyweight detail fetch
	// exhausts its retries. It is recoverable: the user may retry.
	ErrDetailUnavailable = errors.New("ride details unavailable")
)
