package tests

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"riderapp/internal/config"
	"riderapp/internal/service"
)

func newFareService() *service.FareService {
	return service.NewFareService(config.FareConfig{
		CouponPercents:  map[string]int{"SAVE10": 10, "SAVE15": 15},
		CashbackMinFare: 100,
		CashbackCapPct:  30,
	}, zap.NewNop())
}

func TestFareCompute_AllLayersStack(t *testing.T) {
	t.Parallel()

	fare, err := newFareService().Compute(service.FareInput{
		OriginalPrice:       500,
		PlatformDiscountPct: 10,
		CouponCode:          "SAVE10",
		CashbackAvailable:   121,
		ApplyCashback:       true,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if fare.PlatformDiscount != 50 {
		t.Errorf("expected platform discount 50, got %d", fare.PlatformDiscount)
	}
	if fare.CouponDiscount != 45 {
		t.Errorf("expected coupon discount 45, got %d", fare.CouponDiscount)
	}
	if fare.CashbackApplied != 121 {
		t.Errorf("expected cashback 121, got %d", fare.CashbackApplied)
	}
	if fare.TotalFare != 284 {
		t.Errorf("expected total 284, got %d", fare.TotalFare)
	}
}

func TestFareCompute_CashbackCappedAtShareOfRemainder(t *testing.T) {
	t.Parallel()

	fare, err := newFareService().Compute(service.FareInput{
		OriginalPrice:     200,
		CashbackAvailable: 500,
		ApplyCashback:     true,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// 30% of 200.
	if fare.CashbackApplied != 60 {
		t.Errorf("expected cashback capped at 60, got %d", fare.CashbackApplied)
	}
	if fare.TotalFare != 140 {
		t.Errorf("expected total 140, got %d", fare.TotalFare)
	}
}

func TestFareCompute_CashbackGatedByMinimumFare(t *testing.T) {
	t.Parallel()

	fare, err := newFareService().Compute(service.FareInput{
		OriginalPrice:     90,
		CashbackAvailable: 50,
		ApplyCashback:     true,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if fare.CashbackCanApply {
		t.Error("expected cashback to be ineligible below the minimum fare")
	}
	if fare.CashbackApplied != 0 {
		t.Errorf("expected no cashback applied, got %d", fare.CashbackApplied)
	}
	if fare.TotalFare != 90 {
		t.Errorf("expected total 90, got %d", fare.TotalFare)
	}
}

func TestFareCompute_RentalSkipsPlatformDiscount(t *testing.T) {
	t.Parallel()

	fare, err := newFareService().Compute(service.FareInput{
		OriginalPrice:       1000,
		PlatformDiscountPct: 10,
		CouponCode:          "SAVE15",
		IsRental:            true,
		RentalHours:         4,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if fare.PlatformDiscount != 0 {
		t.Errorf("expected no platform discount on a rental, got %d", fare.PlatformDiscount)
	}
	if fare.CouponDiscount != 150 {
		t.Errorf("expected coupon discount 150, got %d", fare.CouponDiscount)
	}
	if fare.TotalFare != 850 {
		t.Errorf("expected total 850, got %d", fare.TotalFare)
	}
}

func TestFareCompute_TotalNeverBelowOne(t *testing.T) {
	t.Parallel()

	svc := service.NewFareService(config.FareConfig{
		CouponPercents:  map[string]int{"FREE": 100},
		CashbackMinFare: 100,
		CashbackCapPct:  30,
	}, zap.NewNop())

	fare, err := svc.Compute(service.FareInput{
		OriginalPrice: 500,
		CouponCode:    "FREE",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if fare.TotalFare != 1 {
		t.Errorf("expected total clamped to 1, got %d", fare.TotalFare)
	}
}

func TestFareCompute_InvalidInputs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   service.FareInput
		wantErr error
	}{
		{
			name:    "no option selected",
			input:   service.FareInput{OriginalPrice: 0},
			wantErr: service.ErrNoOptionSelected,
		},
		{
			name:    "unknown coupon",
			input:   service.FareInput{OriginalPrice: 500, CouponCode: "NOPE"},
			wantErr: service.ErrInvalidCoupon,
		},
	}

	svc := newFareService()
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Compute(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateCoupon_CaseInsensitive(t *testing.T) {
	t.Parallel()

	coupon, err := newFareService().ValidateCoupon(" save10 ")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if coupon.Code != "SAVE10" || coupon.Percent != 10 {
		t.Errorf("unexpected coupon: %+v", coupon)
	}
}
