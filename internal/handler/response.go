package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"riderapp/internal/platform"
	"riderapp/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service and platform errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, platform.ErrRideNotFound),
		errors.Is(err, service.ErrNoActiveRide):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrNoOptionSelected),
		errors.Is(err, service.ErrInvalidCoupon),
		errors.Is(err, service.ErrInvalidRentalHours),
		errors.Is(err, service.ErrNoReasonSelected),
		errors.Is(err, service.ErrUnknownReason),
		errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrBookingInProgress),
		errors.Is(err, service.ErrNotSearching),
		errors.Is(err, service.ErrCancelNotAllowed):
		return http.StatusConflict

	// Business rule errors from the platform
	case errors.Is(err, platform.ErrRechargeRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, platform.ErrNoDriversFound):
		return http.StatusServiceUnavailable

	// Upstream failures
	case errors.Is(err, platform.ErrUnavailable),
		errors.Is(err, platform.ErrMalformedResponse),
		errors.Is(err, service.ErrDetailUnavailable):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
