package ports

import (
	"context"
	"time"

	"relaxed-route-service/internal/domain"
)

// Port: short-lived storage for provider route sets keyed by a normalized query.
// Traffic durations go stale quickly, so every entry carries a TTL.
type RouteCache interface {
	// Return cached routes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]domain.Route, bool, error)
	Put(ctx context.Context, key string, routes []domain.Route, ttl time.Duration) error
}

// Port: persistent address -> coordinates storage.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
