package tests

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"riderapp/internal/domain"
	"riderapp/internal/platform"
	"riderapp/internal/service"
)

var (
	testPickup = domain.Place{Address: "MG Road", Lat: 12.9757, Lng: 77.6057}
	testDrop   = domain.Place{Address: "Airport", Lat: 13.1986, Lng: 77.7066}
)

func TestQuote_ReturnsOptionsWithBalance(t *testing.T) {
	t.Parallel()

	api := NewMockQuoteAPI()
	api.Balance = 121
	api.QuoteResult = &platform.QuoteResult{
		Options: []domain.RideQuoteOption{
			{ID: "mini", Name: "Mini", TotalPrice: 500},
			{ID: "rental-4h", Name: "4h / 40km", TotalPrice: 1067, IsRental: true, RentalHours: 4},
		},
		PlatformDiscountPct: 10,
	}

	svc := service.NewQuoteService(api, nil, zap.NewNop())
	view, err := svc.Quote(context.Background(), testPickup, testDrop)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(view.Options) != 2 {
		t.Errorf("expected 2 options, got %d", len(view.Options))
	}
	if view.PlatformDiscountPct != 10 {
		t.Errorf("expected platform discount 10, got %d", view.PlatformDiscountPct)
	}
	if view.CashbackBalance != 121 {
		t.Errorf("expected balance 121, got %d", view.CashbackBalance)
	}
	if view.DistanceKm <= 0 || view.DurationMins <= 0 {
		t.Errorf("expected a positive fallback route estimate, got %+v", view)
	}
}

func TestQuote_WalletFailureDegradesToZeroBalance(t *testing.T) {
	t.Parallel()

	api := NewMockQuoteAPI()
	api.BalanceError = platform.ErrUnavailable
	api.QuoteResult = &platform.QuoteResult{
		Options: []domain.RideQuoteOption{{ID: "mini", TotalPrice: 500}},
	}

	svc := service.NewQuoteService(api, nil, zap.NewNop())
	view, err := svc.Quote(context.Background(), testPickup, testDrop)
	if err != nil {
		t.Fatalf("expected the quote to survive a wallet failure, got: %v", err)
	}
	if view.CashbackBalance != 0 {
		t.Errorf("expected zero balance, got %d", view.CashbackBalance)
	}
}

func TestQuote_PlatformFailurePropagates(t *testing.T) {
	t.Parallel()

	api := NewMockQuoteAPI()
	api.QuoteError = platform.ErrUnavailable

	svc := service.NewQuoteService(api, nil, zap.NewNop())
	_, err := svc.Quote(context.Background(), testPickup, testDrop)
	if !errors.Is(err, platform.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
