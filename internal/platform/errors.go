package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned for transport failures: timeouts,
	// connection errors, and 5xx responses.
	ErrUnavailable = errors.New("ride platform unavailable")

	// ErrMalformedResponse is returned when a response decodes but is
	// missing required fields. Callers treat it as a failed call.
	ErrMalformedResponse = errors.New("malformed platform response")

	// ErrRideNotFound is returned when the platform does not know the ride.
	ErrRideNotFound = errors.New("ride not found")

	// ErrNoDriversFound is a business rejection: the search ended with no
	// driver available.
	ErrNoDriversFound = errors.New("no drivers found")

	// ErrRechargeRequired is a business rejection: the rider's recharge is
	// insufficient or the plan has expired. The UI redirects to the
	// recharge flow instead of showing a generic error.
	ErrRechargeRequired = errors.New("recharge required")
)

// APIError is a non-2xx platform response carrying a machine-readable code.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

// mapBusinessError translates known platform rejection codes into sentinel
// errors so callers can branch without string matching.
func mapBusinessError(apiErr *APIError) error {
	switch apiErr.Code {
	case "NO_DRIVERS_FOUND":
		return fmt.Errorf("%w: %s", ErrNoDriversFound, apiErr.Message)
	case "RECHARGE_REQUIRED", "PLAN_EXPIRED":
		return fmt.Errorf("%w: %s", ErrRechargeRequired, apiErr.Message)
	case "RIDE_NOT_FOUND":
		return fmt.Errorf("%w: %s", ErrRideNotFound, apiErr.Message)
	default:
		return apiErr
	}
}
