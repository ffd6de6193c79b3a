package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"riderapp/internal/domain"
	"riderapp/internal/service"
)

// BookingHandler handles HTTP requests for the booking flow.
type BookingHandler struct {
	bookingService service.BookingServiceInterface
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService service.BookingServiceInterface) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// BookRequest is the HTTP request body for submitting a booking.
type BookRequest struct {
	VehicleTypeID string              `json:"vehicle_type_id"`
	Pickup        domain.Place        `json:"pickup"`
	Drop          domain.Place        `json:"drop"`
	PaymentMethod string              `json:"payment_method"`
	Fare          *domain.FarePayload `json:"fare"`
	CouponCode    string              `json:"coupon_code,omitempty"`
	Intercity     bool                `json:"intercity,omitempty"`
	BookLater     bool                `json:"book_later,omitempty"`
}

// Book handles POST /v1/bookings
func (h *BookingHandler) Book(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.bookingService.Book(c.Request.Context(), service.BookRequest{
		VehicleTypeID: req.VehicleTypeID,
		Pickup:        req.Pickup,
		Drop:          req.Drop,
		PaymentMethod: req.PaymentMethod,
		Fare:          req.Fare,
		CouponCode:    req.CouponCode,
		Intercity:     req.Intercity,
		BookLater:     req.BookLater,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, result)
}

// CancelSearch handles DELETE /v1/bookings/search
func (h *BookingHandler) CancelSearch(c *gin.Context) {
	if err := h.bookingService.CancelSearch(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"cancelled": true})
}

// Status handles GET /v1/bookings/status
func (h *BookingHandler) Status(c *gin.Context) {
	respondJSON(c, http.StatusOK, h.bookingService.Status())
}
