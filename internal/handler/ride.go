package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"riderapp/internal/domain"
	"riderapp/internal/service"
)

// RideHandler handles HTTP requests for tracked rides.
type RideHandler struct {
	trackingService     service.TrackingServiceInterface
	cancellationService service.CancellationServiceInterface
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(
	trackingService service.TrackingServiceInterface,
	cancellationService service.CancellationServiceInterface,
) *RideHandler {
	return &RideHandler{
		trackingService:     trackingService,
		cancellationService: cancellationService,
	}
}

// SnapshotResponse is the HTTP response for a ride snapshot.
type SnapshotResponse struct {
	RideID         string         `json:"ride_id"`
	Status         string         `json:"status"`
	PaymentStatus  string         `json:"payment_status,omitempty"`
	DriverLocation *domain.LatLng `json:"driver_location,omitempty"`
	Detail         *domain.Ride   `json:"detail,omitempty"`
}

func snapshotResponse(snap *service.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		RideID:         snap.RideID,
		Status:         string(snap.RideStatus),
		PaymentStatus:  string(snap.PaymentStatus),
		DriverLocation: snap.DriverLocation,
		Detail:         snap.Detail,
	}
}

// ActiveRide handles GET /v1/rides/active
func (h *RideHandler) ActiveRide(c *gin.Context) {
	rideID, ok := h.trackingService.ActiveRideID()
	if !ok {
		respondError(c, service.ErrNoActiveRide)
		return
	}

	snap, err := h.trackingService.Snapshot(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, snapshotResponse(snap))
}

// GetSnapshot handles GET /v1/rides/:id
func (h *RideHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.trackingService.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, snapshotResponse(snap))
}

// Refresh handles POST /v1/rides/:id/refresh
func (h *RideHandler) Refresh(c *gin.Context) {
	detail, err := h.trackingService.Refresh(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, detail)
}

// TrackRequest is the HTTP request body for resuming tracking of a ride.
type TrackRequest struct {
	RideID string `json:"ride_id"`
}

// Track handles POST /v1/rides/track. It resumes tracking after an app
// restart, when a ride is live but no session exists yet.
func (h *RideHandler) Track(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	if req.RideID == "" {
		respondError(c, service.ErrNoActiveRide)
		return
	}

	session := h.trackingService.Start(req.RideID, nil)
	snap := session.Tracker.Snapshot()
	respondJSON(c, http.StatusOK, snapshotResponse(&snap))
}

// CancelReasons handles GET /v1/cancel-reasons
func (h *RideHandler) CancelReasons(c *gin.Context) {
	reasons, err := h.cancellationService.Reasons(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"reasons": reasons})
}

// SelectReasonRequest is the HTTP request body for picking a cancellation
// reason.
type SelectReasonRequest struct {
	ReasonID string `json:"reason_id"`
}

// SelectCancelReason handles POST /v1/rides/:id/cancel-reason
func (h *RideHandler) SelectCancelReason(c *gin.Context) {
	var req SelectReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	if err := h.cancellationService.Select(c.Param("id"), req.ReasonID); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"selected": true})
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	if err := h.cancellationService.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"cancelled": true})
}
