package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"relaxed-route-service/internal/domain"
	"relaxed-route-service/internal/platform/obs"
	"relaxed-route-service/internal/ports"
)

// Route search modes.
const (
	ModeNormal = "normal"
	ModeManual = "manual"
	ModeAuto   = "auto"
)

// RelaxedRouteRequest is one rider query.
type RelaxedRouteRequest struct {
	Origin      string
	Destination string
	Mode        string
	TravelMode  string
	// Waypoints are only used in manual mode.
	Waypoints []string
	Policy    DetourPolicy
	Stress    StressOptions
	// Auto is only used in auto mode.
	Auto AutoWaypointParams
}

// RelaxedRoute is the answer to a RelaxedRouteRequest.
type RelaxedRoute struct {
	Mode      string
	Selection *domain.SelectionResult
	Waypoints []string
	// CandidateCount is the number of routes the provider returned for
	// the query that produced the chosen route.
	CandidateCount   int
	MaxAllowedMeters float64
}

// Chosen returns the selected route with its score.
func (r *RelaxedRoute) Chosen() domain.ScoredRoute { return r.Selection.Chosen }

// FindRelaxedRoute collects candidate routes and selects the least stressful
// one within the detour budget. Provider failures are returned wrapped and
// never retried here.
func FindRelaxedRoute(
	ctx context.Context,
	req RelaxedRouteRequest,
	collector ports.RouteCollector,
	geocoder ports.Geocoder,
) (_ *RelaxedRoute, err error) {
	defer obs.Time(ctx, "services.FindRelaxedRoute")(&err)

	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	if origin == "" || destination == "" {
		return nil, errors.New("find relaxed route: origin and destination must be non-empty")
	}

	travelMode := req.TravelMode
	if travelMode == "" {
		travelMode = domain.TravelModeBicycling
	}

	query := domain.RouteQuery{
		Origin:      origin,
		Destination: destination,
		TravelMode:  travelMode,
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeNormal
	}

	switch mode {
	case ModeNormal, ModeManual:
		if mode == ModeManual {
			query.Waypoints = CleanWaypoints(req.Waypoints)
		}
		return selectFromProvider(ctx, mode, query, req, collector)

	case ModeAuto:
		if geocoder == nil {
			return nil, errors.New("find relaxed route: auto mode requires a geocoder")
		}

		originCoord, err := geocoder.Geocode(ctx, origin)
		if err != nil {
			return nil, fmt.Errorf("find relaxed route: geocode origin: %w", err)
		}
		destCoord, err := geocoder.Geocode(ctx, destination)
		if err != nil {
			return nil, fmt.Errorf("find relaxed route: geocode destination: %w", err)
		}

		params := req.Auto
		if params == (AutoWaypointParams{}) {
			params = DefaultAutoWaypointParams()
		}

		res, err := PlanRelaxedRoute(ctx, collector, AutoWaypointRequest{
			Query:       query,
			OriginCoord: originCoord,
			DestCoord:   destCoord,
			Policy:      req.Policy,
			Stress:      req.Stress,
			Params:      params,
		})
		if err != nil {
			return nil, fmt.Errorf("find relaxed route: %w", err)
		}

		return &RelaxedRoute{
			Mode:             mode,
			Selection:        res.Selection,
			Waypoints:        res.Waypoints,
			CandidateCount:   res.CandidateCount,
			MaxAllowedMeters: res.MaxAllowedMeters,
		}, nil

	default:
		return nil, fmt.Errorf("find relaxed route: unknown mode %q", mode)
	}
}

func selectFromProvider(
	ctx context.Context,
	mode string,
	query domain.RouteQuery,
	req RelaxedRouteRequest,
	collector ports.RouteCollector,
) (*RelaxedRoute, error) {
	routes, err := collector.GetRoutes(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find relaxed route: get routes: %w", err)
	}

	sel, err := SelectWithPolicy(routes, req.Policy, req.Stress)
	if err != nil {
		return nil, fmt.Errorf("find relaxed route: %w", err)
	}

	return &RelaxedRoute{
		Mode:             mode,
		Selection:        sel,
		Waypoints:        query.Waypoints,
		CandidateCount:   len(routes),
		MaxAllowedMeters: sel.CeilingMeters,
	}, nil
}

// SelectWithPolicy resolves the detour policy against the shortest
// candidate and runs SelectRoute.
func SelectWithPolicy(routes []domain.Route, policy DetourPolicy, opts StressOptions) (*domain.SelectionResult, error) {
	if len(routes) == 0 {
		return nil, domain.ErrNoCandidateRoutes
	}

	maxIncrease := policy.Fraction
	if policy.Banded {
		for _, r := range routes {
			if err := validateRoute(r); err != nil {
				return nil, err
			}
		}

		var err error
		maxIncrease, err = policy.MaxIncrease(shortestRoute(routes).DistanceMeters)
		if err != nil {
			return nil, err
		}
	}

	return SelectRoute(routes, maxIncrease, opts)
}

// CleanWaypoints trims entries and drops empty ones. It returns nil when
// nothing is left.
func CleanWaypoints(waypoints []string) []string {
	out := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseWaypointsCSV splits comma-separated user input into waypoints.
// A "lat,lng" pair therefore has to be entered as an address or through
// the API's waypoint list.
func ParseWaypointsCSV(raw string) []string {
	return CleanWaypoints(strings.Split(raw, ","))
}
