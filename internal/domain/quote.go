package domain

// RideQuoteOption is a selectable vehicle or rental package returned by the
// platform quote endpoint. Immutable once fetched; a re-quote replaces the
// whole option list.
type RideQuoteOption struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	TotalPrice   int64   `json:"total_price"`
	DistanceKm   float64 `json:"distance_km"`
	DurationMins int     `json:"duration_mins"`
	IsRental     bool    `json:"is_rental"`
	RentalType   string  `json:"rental_type,omitempty"`
	RentalHours  int     `json:"rental_hours,omitempty"`
	PricePerMin  int64   `json:"price_per_min,omitempty"`
	IncludedKm   float64 `json:"included_km,omitempty"`
}

// Coupon is a discount code. The discount amount is always recomputed from
// the current fare payload, never cached, so a stale amount cannot survive
// an option change.
type Coupon struct {
	Code    string `json:"code"`
	Percent int    `json:"percent"`
	Active  bool   `json:"active"`
}

// RentalQuote is the price and distance allowance for a rental package at a
// requested duration, produced remotely or by the local fallback formula.
type RentalQuote struct {
	Hours       int     `json:"hours"`
	TotalFare   int64   `json:"total_fare"`
	EstimatedKm float64 `json:"estimated_km"`
}

// FarePayload is the derived fare breakdown. It is recomputed wholesale on
// every dependency change (selected option, coupon, cashback toggle, rental
// hour selection). TotalFare is never below one.
type FarePayload struct {
	OriginalPrice    int64   `json:"original_price"`
	PlatformDiscount int64   `json:"platform_discount"`
	CouponDiscount   int64   `json:"coupon_discount"`
	CashbackApplied  int64   `json:"cashback_applied"`
	TotalFare        int64   `json:"total_fare"`
	DistanceKm       float64 `json:"distance_km"`
	DurationMins     int     `json:"duration_mins"`
	IsRental         bool    `json:"is_rental"`
	RentalHours      int     `json:"rental_hours,omitempty"`
	EstimatedKm      float64 `json:"estimated_km,omitempty"`
	CashbackAvail    int64   `json:"cashback_available"`
	CashbackCanApply bool    `json:"cashback_can_apply"`
}
