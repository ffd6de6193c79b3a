package service

import (
	"strings"

	"go.uber.org/zap"

	"riderapp/internal/config"
	"riderapp/internal/domain"
)

// FareInput carries everything the fare computation needs. Amounts are in
// whole currency units.
type FareInput struct {
	OriginalPrice       int64
	PlatformDiscountPct float64
	CouponCode          string
	CashbackAvailable   int64
	ApplyCashback       bool
	IsRental            bool
	DistanceKm          float64
	DurationMins        int
	RentalHours         int
	EstimatedKm         float64
}

// FareServiceInterface defines the fare computation operations.
type FareServiceInterface interface {
	Compute(in FareInput) (*domain.FarePayload, error)
	ValidateCoupon(code string) (domain.Coupon, error)
}

// FareService computes the layered fare breakdown. It is pure: the same
// input always yields the same payload.
type FareService struct {
	cfg config.FareConfig
	log *zap.Logger
}

var _ FareServiceInterface = (*FareService)(nil)

// NewFareService creates a new FareService.
func NewFareService(cfg config.FareConfig, log *zap.Logger) *FareService {
	return &FareService{cfg: cfg, log: log}
}

// ValidateCoupon resolves a coupon code against the configured coupon set.
// Codes are matched case-insensitively.
func (s *FareService) ValidateCoupon(code string) (domain.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Coupon{}, ErrInvalidCoupon
	}

	pct, ok := s.cfg.CouponPercents[code]
	if !ok || pct <= 0 {
		return domain.Coupon{}, ErrInvalidCoupon
	}
	return domain.Coupon{Code: code, Percent: pct, Active: true}, nil
}

// Compute applies the discount layers in order. Each layer discounts the
// remainder left by the previous one, with floor division at every step.
// Rentals carry pre-discounted package prices, so the platform layer is
// skipped for them.
func (s *FareService) Compute(in FareInput) (*domain.FarePayload, error) {
	if in.OriginalPrice <= 0 {
		return nil, ErrNoOptionSelected
	}

	remainder := in.OriginalPrice

	var platformDiscount int64
	if !in.IsRental && in.PlatformDiscountPct > 0 {
		platformDiscount = int64(float64(remainder) * in.PlatformDiscountPct / 100.0)
		remainder -= platformDiscount
	}

	var couponDiscount int64
	if in.CouponCode != "" {
		coupon, err := s.ValidateCoupon(in.CouponCode)
		if err != nil {
			return nil, err
		}
		couponDiscount = remainder * int64(coupon.Percent) / 100
		remainder -= couponDiscount
	}

	// Cashback applies last, only above the minimum fare, and never more
	// than the configured share of what the rider still owes.
	var cashbackApplied int64
	cashbackCanApply := in.CashbackAvailable > 0 && remainder >= s.cfg.CashbackMinFare
	if in.ApplyCashback && cashbackCanApply {
		limit := remainder * int64(s.cfg.CashbackCapPct) / 100
		cashbackApplied = in.CashbackAvailable
		if cashbackApplied > limit {
			cashbackApplied = limit
		}
		remainder -= cashbackApplied
	}

	// The payable amount never reaches zero.
	if remainder < 1 {
		remainder = 1
	}

	return &domain.FarePayload{
		OriginalPrice:    in.OriginalPrice,
		PlatformDiscount: platformDiscount,
		CouponDiscount:   couponDiscount,
		CashbackApplied:  cashbackApplied,
		TotalFare:        remainder,
		DistanceKm:       in.DistanceKm,
		DurationMins:     in.DurationMins,
		IsRental:         in.IsRental,
		RentalHours:      in.RentalHours,
		EstimatedKm:      in.EstimatedKm,
		CashbackAvail:    in.CashbackAvailable,
		CashbackCanApply: cashbackCanApply,
	}, nil
}
