package maps

import (
	"math"

	"riderapp/internal/domain"
)

// cityAvgSpeedKmh is the average speed assumed when estimating duration
// without a routing backend.
const cityAvgSpeedKmh = 30.0

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(a, b domain.LatLng) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLng := (b.Lng - a.Lng) * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// FallbackEstimate estimates a route from straight-line distance and an
// assumed average city speed. Used when no maps client is configured or the
// Directions call fails.
func FallbackEstimate(pickup, drop domain.LatLng) *RouteEstimate {
	km := HaversineKm(pickup, drop)
	mins := int(math.Ceil(km / cityAvgSpeedKmh * 60.0))
	if mins < 1 {
		mins = 1
	}
	return &RouteEstimate{DistanceKm: km, DurationMins: mins}
}
