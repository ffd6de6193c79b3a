package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"riderapp/internal/config"
	"riderapp/internal/domain"
	"riderapp/internal/platform"
)

// Slot states for cached rental quotes.
const (
	SlotLoading  = "loading"
	SlotReady    = "ready"
	SlotFallback = "fallback"
)

// RentalSlot is one hour option in the rental quote cache.
type RentalSlot struct {
	State string
	Quote domain.RentalQuote
}

// RentalServiceInterface defines the rental recalculation operations.
type RentalServiceInterface interface {
	Recalculate(ctx context.Context, base domain.RideQuoteOption, requestedHours int) (domain.RentalQuote, bool)
	PrefetchQuotes(ctx context.Context, base domain.RideQuoteOption, hourOptions []int) *RentalQuoteCache
}

// RentalService recalculates rental package quotes for extended durations.
type RentalService struct {
	quotes platform.QuoteAPI
	cfg    config.RentalConfig
	log    *zap.Logger
}

var _ RentalServiceInterface = (*RentalService)(nil)

// NewRentalService creates a new RentalService.
func NewRentalService(quotes platform.QuoteAPI, cfg config.RentalConfig, log *zap.Logger) *RentalService {
	return &RentalService{quotes: quotes, cfg: cfg, log: log}
}

// Recalculate asks the platform to reprice the rental for requestedHours.
// When the platform cannot answer, it falls back to linear extrapolation
// from the base package so the rider always sees a price. The second
// return reports whether the fallback produced the quote.
func (s *RentalService) Recalculate(ctx context.Context, base domain.RideQuoteOption, requestedHours int) (domain.RentalQuote, bool) {
	if requestedHours <= base.RentalHours {
		return domain.RentalQuote{
			Hours:       base.RentalHours,
			TotalFare:   base.TotalPrice,
			EstimatedKm: base.IncludedKm,
		}, false
	}

	quote, err := s.quotes.RecalculateRental(ctx, platform.RecalculateRentalRequest{
		RentalType:         base.RentalType,
		OriginalHours:      base.RentalHours,
		AdditionalHours:    requestedHours - base.RentalHours,
		OriginalDistanceKm: base.IncludedKm,
		CurrentFare:        base.TotalPrice,
	})
	if err != nil {
		s.log.Warn("rental recalculation failed, using extrapolation",
			zap.String("rental_type", base.RentalType),
			zap.Int("requested_hours", requestedHours),
			zap.Error(err),
		)
		return s.extrapolate(base, requestedHours), true
	}
	return *quote, false
}

// extrapolate scales the base package linearly. Distance grows by the
// configured kilometers for every added hour.
func (s *RentalService) extrapolate(base domain.RideQuoteOption, requestedHours int) domain.RentalQuote {
	hours := base.RentalHours
	if hours <= 0 {
		hours = 1
	}
	fare := base.TotalPrice * int64(requestedHours) / int64(hours)
	extraKm := float64(requestedHours-base.RentalHours) * s.cfg.ExtraKmPerHour

	return domain.RentalQuote{
		Hours:       requestedHours,
		TotalFare:   fare,
		EstimatedKm: base.IncludedKm + extraKm,
	}
}

// PrefetchQuotes fires one recalculation per hour option in the background
// and returns a cache that fills in as answers arrive. The duration picker
// reads slots without waiting for the slowest request.
func (s *RentalService) PrefetchQuotes(ctx context.Context, base domain.RideQuoteOption, hourOptions []int) *RentalQuoteCache {
	cache := newRentalQuoteCache(hourOptions)

	for _, hours := range hourOptions {
		cache.wg.Add(1)
		go func(h int) {
			defer cache.wg.Done()
			quote, usedFallback := s.Recalculate(ctx, base, h)

			state := SlotReady
			if usedFallback {
				state = SlotFallback
			}
			cache.set(h, RentalSlot{State: state, Quote: quote})
		}(hours)
	}
	return cache
}

// RentalQuoteCache holds per-hour rental quotes keyed by duration.
type RentalQuoteCache struct {
	mu    sync.RWMutex
	slots map[int]RentalSlot
	wg    sync.WaitGroup
}

func newRentalQuoteCache(hourOptions []int) *RentalQuoteCache {
	slots := make(map[int]RentalSlot, len(hourOptions))
	for _, h := range hourOptions {
		slots[h] = RentalSlot{State: SlotLoading}
	}
	return &RentalQuoteCache{slots: slots}
}

func (c *RentalQuoteCache) set(hours int, slot RentalSlot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots[hours] = slot
}

// Slot returns the current slot for a duration.
func (c *RentalQuoteCache) Slot(hours int) (RentalSlot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	slot, ok := c.slots[hours]
	return slot, ok
}

// Wait blocks until every prefetch has settled.
func (c *RentalQuoteCache) Wait() {
	c.wg.Wait()
}
