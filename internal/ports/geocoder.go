package ports

import (
	"context"
	"driver-route-optimizer/internal/domain"
)

// Contract for resolving free-text addresses to coordinates.
type Geocoder interface {
	// Return coordinates keyed by the input address. Addresses that cannot be
	// resolved are reported as an error rather than silently dropped.
	Geocode(ctx context.Context, addresses []string) (map[string]domain.Coordinate, error)
}
