package ports

import (
	"context"

	"relaxed-route-service/internal/domain"
)

// Contract for retrieving alternative routes between two places.
type RouteCollector interface {
	// Return candidate routes for the query, in provider order.
	// An empty slice with a nil error means the provider found no route.
	GetRoutes(ctx context.Context, q domain.RouteQuery) ([]domain.Route, error)
}

// Contract for resolving a human-readable place into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
