package maps

import (
	"testing"

	"riderapp/internal/domain"
)

func TestHaversineKm(t *testing.T) {
	t.Parallel()

	// Bengaluru city center to the airport, roughly 30km straight-line.
	a := domain.LatLng{Lat: 12.9757, Lng: 77.6057}
	b := domain.LatLng{Lat: 13.1986, Lng: 77.7066}

	km := HaversineKm(a, b)
	if km < 25 || km > 32 {
		t.Errorf("expected roughly 27km, got %v", km)
	}

	if HaversineKm(a, a) != 0 {
		t.Error("expected zero distance for identical points")
	}
}

func TestFallbackEstimate(t *testing.T) {
	t.Parallel()

	a := domain.LatLng{Lat: 12.9757, Lng: 77.6057}
	b := domain.LatLng{Lat: 13.1986, Lng: 77.7066}

	est := FallbackEstimate(a, b)
	if est.DistanceKm <= 0 {
		t.Error("expected a positive distance")
	}
	if est.DurationMins < 1 {
		t.Error("expected at least one minute")
	}

	// Zero-length trips still get the minimum duration.
	if FallbackEstimate(a, a).DurationMins != 1 {
		t.Error("expected the minimum duration for a zero-length trip")
	}
}
