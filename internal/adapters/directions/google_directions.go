package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"relaxed-route-service/internal/domain"
)

type textValue struct {
	Value float64 `json:"value"`
}

type directionsLeg struct {
	Distance          *textValue `json:"distance"`
	Duration          *textValue `json:"duration"`
	DurationInTraffic *textValue `json:"duration_in_traffic"`
}

type directionsRoute struct {
	Summary          string          `json:"summary"`
	Legs             []directionsLeg `json:"legs"`
	OverviewPolyline struct {
		Points string `json:"points"`
	} `json:"overview_polyline"`
}

type directionsResponse struct {
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message"`
	Routes       []directionsRoute `json:"routes"`
}

// Directions statuses that carry no error.
const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// fetchRoutes calls the Directions endpoint and flattens each alternative
// into a domain.Route.
func (g *GoogleDirectionsProvider) fetchRoutes(
	ctx context.Context,
	q domain.RouteQuery,
	waypoints string,
) ([]domain.Route, error) {
	endpoint := g.baseURL + "/maps/api/directions/json"

	resp, err := g.doWithRetry(ctx, "directions", func() (*http.Request, error) {
		req, err := g.newRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}

		params := req.URL.Query()
		params.Set("origin", q.Origin)
		params.Set("destination", q.Destination)
		params.Set("mode", q.TravelMode)
		params.Set("alternatives", "true")
		params.Set("departure_time", "now")
		params.Set("traffic_model", "best_guess")
		params.Set("key", g.apiKey)
		if waypoints != "" {
			params.Set("waypoints", waypoints)
		}
		req.URL.RawQuery = params.Encode()

		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	// Google returns HTTP 200 with an error status in the payload.
	switch dr.Status {
	case "", statusOK:
	case statusZeroResults:
		return []domain.Route{}, nil
	default:
		return nil, fmt.Errorf("directions API error: %s - %s", dr.Status, dr.ErrorMessage)
	}

	routes := make([]domain.Route, 0, len(dr.Routes))
	for _, r := range dr.Routes {
		if len(r.Legs) == 0 {
			continue
		}

		route := sumLegs(r.Legs)
		route.Index = len(routes)
		route.Summary = r.Summary
		route.Polyline = r.OverviewPolyline.Points
		routes = append(routes, route)
	}

	return routes, nil
}

// sumLegs adds distance and durations across legs. A leg without a traffic
// estimate contributes its typical duration. A missing metric turns the
// total into NaN so route validation rejects it with the route's index
// instead of it silently counting as zero.
func sumLegs(legs []directionsLeg) domain.Route {
	var out domain.Route

	for _, leg := range legs {
		traffic := leg.DurationInTraffic
		if traffic == nil {
			traffic = leg.Duration
		}

		out.DistanceMeters += valueOrNaN(leg.Distance)
		out.DurationSeconds += valueOrNaN(leg.Duration)
		out.DurationInTrafficSeconds += valueOrNaN(traffic)
	}

	return out
}

func valueOrNaN(v *textValue) float64 {
	if v == nil {
		return math.NaN()
	}
	return v.Value
}

// serializeWaypoints joins waypoints with '|', dropping blanks. Returns ""
// when nothing is left.
func serializeWaypoints(waypoints []string, optimize bool) string {
	cleaned := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		if w = strings.TrimSpace(w); w != "" {
			cleaned = append(cleaned, w)
		}
	}

	if len(cleaned) == 0 {
		return ""
	}

	serialized := strings.Join(cleaned, "|")
	if optimize {
		serialized = "optimize:true|" + serialized
	}

	return serialized
}
