package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"riderapp/internal/domain"
)

// RouteEstimate is a distance/duration estimate between two points.
type RouteEstimate struct {
	DistanceKm   float64
	DurationMins int
}

// RouteEstimator produces a driving estimate for a pickup/drop pair.
type RouteEstimator interface {
	Estimate(ctx context.Context, pickup, drop domain.LatLng) (*RouteEstimate, error)
}

// RouteService resolves routes through the Google Maps Directions API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Estimate returns the driving distance and duration between two points.
func (s *RouteService) Estimate(ctx context.Context, pickup, drop domain.LatLng) (*RouteEstimate, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", pickup.Lat, pickup.Lng),
		Destination: fmt.Sprintf("%f,%f", drop.Lat, drop.Lng),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	leg := routes[0].Legs[0]
	return &RouteEstimate{
		DistanceKm:   float64(leg.Distance.Meters) / 1000.0,
		DurationMins: int(leg.Duration.Minutes()),
	}, nil
}

var _ RouteEstimator = (*RouteService)(nil)
