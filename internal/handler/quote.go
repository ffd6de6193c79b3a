package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"riderapp/internal/domain"
	"riderapp/internal/service"
)

// QuoteHandler handles HTTP requests for quoting and fare computation.
type QuoteHandler struct {
	quoteService  service.QuoteServiceInterface
	fareService   service.FareServiceInterface
	rentalService service.RentalServiceInterface
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(
	quoteService service.QuoteServiceInterface,
	fareService service.FareServiceInterface,
	rentalService service.RentalServiceInterface,
) *QuoteHandler {
	return &QuoteHandler{
		quoteService:  quoteService,
		fareService:   fareService,
		rentalService: rentalService,
	}
}

// QuoteRequest is the HTTP request body for fetching ride options.
type QuoteRequest struct {
	Pickup domain.Place `json:"pickup"`
	Drop   domain.Place `json:"drop"`
}

// Quote handles POST /v1/quotes
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	view, err := h.quoteService.Quote(c.Request.Context(), req.Pickup, req.Drop)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, view)
}

// ComputeFareRequest is the HTTP request body for a fare preview. The
// client resends it on every selection change; the breakdown is always
// recomputed from scratch.
type ComputeFareRequest struct {
	OriginalPrice       int64   `json:"original_price"`
	PlatformDiscountPct float64 `json:"platform_discount_pct"`
	CouponCode          string  `json:"coupon_code,omitempty"`
	CashbackAvailable   int64   `json:"cashback_available"`
	ApplyCashback       bool    `json:"apply_cashback"`
	IsRental            bool    `json:"is_rental"`
	DistanceKm          float64 `json:"distance_km"`
	DurationMins        int     `json:"duration_mins"`
	RentalHours         int     `json:"rental_hours,omitempty"`
	EstimatedKm         float64 `json:"estimated_km,omitempty"`
}

// ComputeFare handles POST /v1/fares/compute
func (h *QuoteHandler) ComputeFare(c *gin.Context) {
	var req ComputeFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	fare, err := h.fareService.Compute(service.FareInput{
		OriginalPrice:       req.OriginalPrice,
		PlatformDiscountPct: req.PlatformDiscountPct,
		CouponCode:          req.CouponCode,
		CashbackAvailable:   req.CashbackAvailable,
		ApplyCashback:       req.ApplyCashback,
		IsRental:            req.IsRental,
		DistanceKm:          req.DistanceKm,
		DurationMins:        req.DurationMins,
		RentalHours:         req.RentalHours,
		EstimatedKm:         req.EstimatedKm,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, fare)
}

// ValidateCouponRequest is the HTTP request body for coupon validation.
type ValidateCouponRequest struct {
	Code string `json:"code"`
}

// ValidateCoupon handles POST /v1/coupons/validate
func (h *QuoteHandler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	coupon, err := h.fareService.ValidateCoupon(req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, coupon)
}

// RecalculateRentalRequest is the HTTP request body for repricing a rental
// package at a different duration.
type RecalculateRentalRequest struct {
	Option         domain.RideQuoteOption `json:"option"`
	RequestedHours int                    `json:"requested_hours"`
}

// RecalculateRentalResponse is the HTTP response for a rental repricing.
type RecalculateRentalResponse struct {
	Quote        domain.RentalQuote `json:"quote"`
	UsedFallback bool               `json:"used_fallback"`
}

// RecalculateRental handles POST /v1/rentals/recalculate
func (h *QuoteHandler) RecalculateRental(c *gin.Context) {
	var req RecalculateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	if req.RequestedHours <= 0 {
		respondError(c, service.ErrInvalidRentalHours)
		return
	}

	quote, usedFallback := h.rentalService.Recalculate(c.Request.Context(), req.Option, req.RequestedHours)
	respondJSON(c, http.StatusOK, RecalculateRentalResponse{
		Quote:        quote,
		UsedFallback: usedFallback,
	})
}
