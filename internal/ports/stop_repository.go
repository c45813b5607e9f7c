package ports

import (
	"context"
	"driver-route-optimizer/internal/domain"
)

// Port: a boundary for retrieving seeded Stop entities from a data source.
type StopRepository interface {
	// Retrieve all stops available for routing, ordered by id.
	ListStops(ctx context.Context) ([]domain.Stop, error)
}
