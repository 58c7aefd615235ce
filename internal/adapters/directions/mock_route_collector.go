package directions

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"relaxed-route-service/internal/domain"
)

// MockRouteCollector serves canned routes keyed by "origin|destination|waypoints".
// It records every query it receives.
type MockRouteCollector struct {
	mu      sync.Mutex
	routes  map[string][]domain.Route
	coords  map[string]domain.Coordinates
	Queries []domain.RouteQuery
	// Fallback answers queries without a canned entry when set.
	Fallback func(q domain.RouteQuery) ([]domain.Route, error)
}

func NewMockRouteCollector() *MockRouteCollector {
	return &MockRouteCollector{
		routes: map[string][]domain.Route{},
		coords: map[string]domain.Coordinates{},
	}
}

func mockKey(origin, destination string, waypoints []string) string {
	return origin + "|" + destination + "|" + strings.Join(waypoints, ";")
}

// Add registers routes for a query. Route indexes are set from their position.
func (m *MockRouteCollector) Add(origin, destination string, waypoints []string, routes ...domain.Route) *MockRouteCollector {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Route, len(routes))
	for i, r := range routes {
		r.Index = i
		out[i] = r
	}
	m.routes[mockKey(origin, destination, waypoints)] = out
	return m
}

// AddPlace registers coordinates for Geocode.
func (m *MockRouteCollector) AddPlace(address string, c domain.Coordinates) *MockRouteCollector {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.coords[address] = c
	return m
}

func (m *MockRouteCollector) GetRoutes(ctx context.Context, q domain.RouteQuery) ([]domain.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Queries = append(m.Queries, q)
	r, ok := m.routes[mockKey(q.Origin, q.Destination, q.Waypoints)]
	fallback := m.Fallback
	m.mu.Unlock()

	if ok {
		return append([]domain.Route(nil), r...), nil
	}
	if fallback != nil {
		return fallback(q)
	}
	return nil, fmt.Errorf("missing routes %q -> %q via %v", q.Origin, q.Destination, q.Waypoints)
}

func (m *MockRouteCollector) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.coords[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("missing place %q", address)
	}
	return c, nil
}

// QueryCount returns how many GetRoutes calls were made.
func (m *MockRouteCollector) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}
