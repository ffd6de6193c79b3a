package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"riderapp/internal/domain"
)

// QuoteOptions fetches the selectable vehicle and rental options for a trip.
func (c *Client) QuoteOptions(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	var result QuoteResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/quotes", req, &result, false); err != nil {
		return nil, err
	}
	if len(result.Options) == 0 {
		return nil, fmt.Errorf("%w: quote returned no options", ErrMalformedResponse)
	}
	for _, opt := range result.Options {
		if opt.ID == "" {
			return nil, fmt.Errorf("%w: quote option missing id", ErrMalformedResponse)
		}
	}
	return &result, nil
}

// RecalculateRental asks the platform to reprice a rental package for a new
// duration. Transport and validation failures are returned as-is; the
// caller owns the deterministic fallback.
func (c *Client) RecalculateRental(ctx context.Context, req RecalculateRentalRequest) (*domain.RentalQuote, error) {
	var quote domain.RentalQuote
	err := c.doJSONTimeout(ctx, http.MethodPost, "/api/v1/rentals/recalculate", req, &quote, c.cfg.RecalcTimeout, false)
	if err != nil {
		return nil, err
	}
	if quote.TotalFare <= 0 {
		return nil, fmt.Errorf("%w: recalculation missing total fare", ErrMalformedResponse)
	}
	quote.Hours = req.OriginalHours + req.AdditionalHours
	return &quote, nil
}

// WalletBalance reads the rider's cashback wallet balance. The balance is
// owned by the backend settlement process; the client never decrements it.
func (c *Client) WalletBalance(ctx context.Context) (int64, error) {
	var resp struct {
		Balance int64 `json:"balance"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/wallet", nil, &resp, false); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// SubmitRide submits the full ride request and returns the ride handle the
// poller tracks from then on.
func (c *Client) SubmitRide(ctx context.Context, req SubmitRideRequest) (*SubmitRideResult, error) {
	var result SubmitRideResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/rides", req, &result, true); err != nil {
		return nil, err
	}
	if result.RideID == "" {
		return nil, fmt.Errorf("%w: submission missing ride id", ErrMalformedResponse)
	}
	return &result, nil
}

// RideStatus performs the lightweight status poll.
func (c *Client) RideStatus(ctx context.Context, rideID string) (*RideStatusResult, error) {
	var result RideStatusResult
	path := "/api/v1/rides/" + url.PathEscape(rideID) + "/status"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

// RideDetail performs the heavyweight detail fetch: the full ride projection
// including driver, pricing, and addresses.
func (c *Client) RideDetail(ctx context.Context, rideID string) (*domain.Ride, error) {
	var resp struct {
		ID            string               `json:"id"`
		RideStatus    domain.RideStatus    `json:"ride_status"`
		PaymentStatus domain.PaymentStatus `json:"payment_status"`
		Pickup        domain.Place         `json:"pickup"`
		Drop          domain.Place         `json:"drop"`
		Driver        *domain.DriverInfo   `json:"driver"`
		Pricing       *domain.FarePayload  `json:"pricing"`
		RideOTP       string               `json:"ride_otp"`
		IsCashbackGet bool                 `json:"is_cashback_get"`
		Cashback      int64                `json:"cashback"`
	}
	path := "/api/v1/rides/" + url.PathEscape(rideID)
	if err := c.doJSONTimeout(ctx, http.MethodGet, path, nil, &resp, c.cfg.DetailTimeout, false); err != nil {
		return nil, err
	}
	if resp.ID == "" || resp.RideStatus == "" {
		return nil, fmt.Errorf("%w: ride detail missing id or status", ErrMalformedResponse)
	}
	return &domain.Ride{
		ID:            resp.ID,
		Status:        resp.RideStatus,
		PaymentStatus: resp.PaymentStatus,
		Pickup:        resp.Pickup,
		Drop:          resp.Drop,
		Driver:        resp.Driver,
		Pricing:       resp.Pricing,
		OTP:           resp.RideOTP,
		IsCashbackGet: resp.IsCashbackGet,
		Cashback:      resp.Cashback,
	}, nil
}

// CancelSearch is the best-effort cancel used before a driver is assigned.
func (c *Client) CancelSearch(ctx context.Context, rideID string) error {
	path := "/api/v1/rides/" + url.PathEscape(rideID) + "/cancel-search"
	return c.doJSON(ctx, http.MethodPost, path, nil, nil, true)
}

// CancelRide cancels a ride after driver assignment with a selected reason.
func (c *Client) CancelRide(ctx context.Context, req CancelRideRequest) error {
	path := "/api/v1/rides/" + url.PathEscape(req.RideID) + "/cancel"
	return c.doJSON(ctx, http.MethodPost, path, req, nil, true)
}

// CancelReasons fetches the cancellation reason reference list.
func (c *Client) CancelReasons(ctx context.Context, reasonType string) ([]domain.CancelReason, error) {
	var resp struct {
		Reasons []domain.CancelReason `json:"reasons"`
	}
	path := "/api/v1/cancel-reasons"
	if reasonType != "" {
		path += "?type=" + url.QueryEscape(reasonType)
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp, false); err != nil {
		return nil, err
	}
	c.log.Debug("fetched cancel reasons", zap.Int("count", len(resp.Reasons)))
	return resp.Reasons, nil
}
