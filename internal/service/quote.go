package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"riderapp/internal/domain"
	"riderapp/internal/maps"
	"riderapp/internal/platform"
)

// QuoteView is everything needed to render the option sheet: the options,
// the platform discount in effect, and the rider's cashback balance.
type QuoteView struct {
	Options             []domain.RideQuoteOption `json:"options"`
	PlatformDiscountPct int                      `json:"platform_discount_pct"`
	CashbackBalance     int64                    `json:"cashback_balance"`
	DistanceKm          float64                  `json:"distance_km"`
	DurationMins        int                      `json:"duration_mins"`
}

// QuoteServiceInterface defines the quote fetch operations.
type QuoteServiceInterface interface {
	Quote(ctx context.Context, pickup, drop domain.Place) (*QuoteView, error)
}

// QuoteService fetches ride options for a pickup/drop pair. The route
// estimate feeds the platform quote request; the wallet balance rides along
// so the fare preview can offer cashback without a second round trip.
type QuoteService struct {
	quotes platform.QuoteAPI
	routes maps.RouteEstimator
	log    *zap.Logger
}

var _ QuoteServiceInterface = (*QuoteService)(nil)

// NewQuoteService creates a new QuoteService. routes may be nil; the
// straight-line fallback then covers every estimate.
func NewQuoteService(quotes platform.QuoteAPI, routes maps.RouteEstimator, log *zap.Logger) *QuoteService {
	return &QuoteService{quotes: quotes, routes: routes, log: log}
}

// Quote returns the option sheet for a trip.
func (s *QuoteService) Quote(ctx context.Context, pickup, drop domain.Place) (*QuoteView, error) {
	route := s.estimate(ctx, pickup, drop)

	// The wallet read is not on the critical path; a failed read just
	// means no cashback offer this time.
	var (
		wg      sync.WaitGroup
		balance int64
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		b, err := s.quotes.WalletBalance(ctx)
		if err != nil {
			s.log.Warn("wallet balance fetch failed", zap.Error(err))
			return
		}
		balance = b
	}()

	result, err := s.quotes.QuoteOptions(ctx, platform.QuoteRequest{
		Pickup:       pickup,
		Drop:         drop,
		DistanceKm:   route.DistanceKm,
		DurationMins: route.DurationMins,
	})
	if err != nil {
		return nil, err
	}
	wg.Wait()

	return &QuoteView{
		Options:             result.Options,
		PlatformDiscountPct: result.PlatformDiscountPct,
		CashbackBalance:     balance,
		DistanceKm:          route.DistanceKm,
		DurationMins:        route.DurationMins,
	}, nil
}

func (s *QuoteService) estimate(ctx context.Context, pickup, drop domain.Place) *maps.RouteEstimate {
	a := domain.LatLng{Lat: pickup.Lat, Lng: pickup.Lng}
	b := domain.LatLng{Lat: drop.Lat, Lng: drop.Lng}

	if s.routes != nil {
		if est, err := s.routes.Estimate(ctx, a, b); err == nil {
			return est
		} else {
			s.log.Warn("route estimate failed, using straight-line fallback", zap.Error(err))
		}
	}
	return maps.FallbackEstimate(a, b)
}
