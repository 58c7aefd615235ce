package cache

import (
	"encoding/json"
	"fmt"

	"relaxed-route-service/internal/domain"
)

// cachedRoute is the stored form of a domain.Route.
type cachedRoute struct {
	Index                    int     `json:"index"`
	Summary                  string  `json:"summary"`
	Polyline                 string  `json:"polyline"`
	DistanceMeters           float64 `json:"distance_meters"`
	DurationSeconds          float64 `json:"duration_seconds"`
	DurationInTrafficSeconds float64 `json:"duration_in_traffic_seconds"`
}

func encodeRoutes(routes []domain.Route) ([]byte, error) {
	rows := make([]cachedRoute, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, cachedRoute(r))
	}

	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode cached routes: %w", err)
	}
	return b, nil
}

func decodeRoutes(b []byte) ([]domain.Route, error) {
	var rows []cachedRoute
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode cached routes: %w", err)
	}

	out := make([]domain.Route, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Route(r))
	}
	return out, nil
}
