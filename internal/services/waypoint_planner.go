package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"relaxed-route-service/internal/domain"
	"relaxed-route-service/internal/ports"
)

// AutoWaypointParams controls the greedy waypoint search.
type AutoWaypointParams struct {
	RadiusMeters      float64
	CandidatesPerStep int
	HeadingSpreadDeg  float64
	MaxWaypoints      int
}

// DefaultAutoWaypointParams returns the search tuning used when a caller
// does not override it.
func DefaultAutoWaypointParams() AutoWaypointParams {
	return AutoWaypointParams{
		RadiusMeters:      1000,
		CandidatesPerStep: 12,
		HeadingSpreadDeg:  60,
		MaxWaypoints:      5,
	}
}

func (p AutoWaypointParams) validate() error {
	if p.RadiusMeters <= 0 {
		return fmt.Errorf("auto waypoints: radius must be positive, got %v", p.RadiusMeters)
	}
	if p.CandidatesPerStep < 1 {
		return fmt.Errorf("auto waypoints: candidates per step must be >= 1, got %d", p.CandidatesPerStep)
	}
	if p.HeadingSpreadDeg < 0 || p.HeadingSpreadDeg > 360 {
		return fmt.Errorf("auto waypoints: heading spread must be within [0, 360], got %v", p.HeadingSpreadDeg)
	}
	if p.MaxWaypoints < 0 {
		return fmt.Errorf("auto waypoints: max waypoints must be >= 0, got %d", p.MaxWaypoints)
	}
	return nil
}

// AutoWaypointRequest is the input of PlanRelaxedRoute.
type AutoWaypointRequest struct {
	Query       domain.RouteQuery
	OriginCoord domain.Coordinates
	DestCoord   domain.Coordinates
	Policy      DetourPolicy
	Stress      StressOptions
	Params      AutoWaypointParams
}

// AutoWaypointResult is the best route found by the waypoint search.
type AutoWaypointResult struct {
	Best             domain.ScoredRoute
	Selection        *domain.SelectionResult
	Waypoints        []string
	ShortestMeters   float64
	MaxAllowedMeters float64
	Steps            int
	// CandidateCount is the number of routes the provider returned for
	// the query that produced Best.
	CandidateCount int
}

// PlanRelaxedRoute greedily adds waypoints that pull the route away from
// congested roads while staying under the detour ceiling of the baseline trip.
//
// Each step probes candidate points on a circle around the last accepted
// point, biased toward the destination, and keeps the candidate whose best
// route is less stressful (then shorter) than the current best. The search
// stops early when a step brings no improvement. The provider is the road
// snapping and traffic oracle; no pathfinding happens here.
func PlanRelaxedRoute(
	ctx context.Context,
	collector ports.RouteCollector,
	req AutoWaypointRequest,
) (*AutoWaypointResult, error) {
	if err := req.Params.validate(); err != nil {
		return nil, err
	}

	baseQuery := req.Query
	baseQuery.Waypoints = nil

	baseline, err := collector.GetRoutes(ctx, baseQuery)
	if err != nil {
		return nil, fmt.Errorf("plan relaxed route: get baseline routes: %w", err)
	}
	if len(baseline) == 0 {
		return nil, domain.ErrNoCandidateRoutes
	}

	shortest := shortestRoute(baseline)
	maxIncrease, err := req.Policy.MaxIncrease(shortest.DistanceMeters)
	if err != nil {
		return nil, fmt.Errorf("plan relaxed route: %w", err)
	}

	selection, err := SelectRoute(baseline, maxIncrease, req.Stress)
	if errors.Is(err, domain.ErrNoEligibleRoute) {
		// Fall back to the shortest route when nothing fits.
		selection, err = SelectRoute([]domain.Route{shortest}, 0, req.Stress)
	}
	if err != nil {
		return nil, fmt.Errorf("plan relaxed route: select baseline: %w", err)
	}

	// Trial routes are measured against the baseline ceiling, not their own shortest.
	ceiling := shortest.DistanceMeters * (1 + maxIncrease)
	selection.BaselineDistanceMeters = shortest.DistanceMeters
	selection.CeilingMeters = ceiling
	current := selection.Chosen
	currentSelection := selection
	candidateCount := len(baseline)

	chosen := []string{}
	at := req.OriginCoord
	steps := 0

	for step := 0; step < req.Params.MaxWaypoints; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		improved := false
		var bestPoint domain.Coordinates
		var bestWaypoints []string

		for _, p := range candidatePoints(at, req.DestCoord, req.Params) {
			trial := append(append([]string{}, chosen...), p.String())

			q := req.Query
			q.Waypoints = trial
			routes, err := collector.GetRoutes(ctx, q)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				log.Printf("auto waypoints: step=%d candidate=%s err=%v", step+1, p, err)
				continue
			}

			trialSelection, ok, err := bestUnderCeiling(routes, shortest.DistanceMeters, ceiling, req.Stress)
			if err != nil {
				log.Printf("auto waypoints: step=%d candidate=%s err=%v", step+1, p, err)
				continue
			}
			if !ok {
				continue
			}

			if isLessStressful(trialSelection.Chosen, current) {
				improved = true
				current = trialSelection.Chosen
				currentSelection = trialSelection
				candidateCount = len(routes)
				bestPoint = p
				bestWaypoints = trial
			}
		}

		if !improved {
			break
		}

		steps++
		chosen = bestWaypoints
		at = bestPoint
	}

	return &AutoWaypointResult{
		Best:             current,
		Selection:        currentSelection,
		Waypoints:        chosen,
		ShortestMeters:   shortest.DistanceMeters,
		MaxAllowedMeters: ceiling,
		Steps:            steps,
		CandidateCount:   candidateCount,
	}, nil
}

// bestUnderCeiling scores routes that fit under an absolute ceiling derived
// from the baseline trip. ok is false when none fits.
func bestUnderCeiling(routes []domain.Route, baselineMeters, ceiling float64, opts StressOptions) (*domain.SelectionResult, bool, error) {
	fitting := make([]domain.Route, 0, len(routes))
	for _, r := range routes {
		if r.DistanceMeters <= ceiling*(1+ceilingEpsilon) {
			fitting = append(fitting, r)
		}
	}
	if len(fitting) == 0 {
		return nil, false, nil
	}

	// Every fitting route is already inside the ceiling, so no further
	// filtering relative to the trial's own shortest route is wanted.
	res, err := SelectRoute(fitting, maxFraction(fitting, ceiling), opts)
	if errors.Is(err, domain.ErrNoEligibleRoute) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	res.BaselineDistanceMeters = baselineMeters
	res.CeilingMeters = ceiling
	return res, true, nil
}

// maxFraction returns the increase fraction that maps the shortest of
// routes onto ceiling.
func maxFraction(routes []domain.Route, ceiling float64) float64 {
	s := shortestRoute(routes).DistanceMeters
	if s <= 0 || ceiling <= s {
		return 0
	}
	return ceiling/s - 1
}

func shortestRoute(routes []domain.Route) domain.Route {
	best := routes[0]
	for _, r := range routes[1:] {
		if r.DistanceMeters < best.DistanceMeters {
			best = r
		}
	}
	return best
}

// candidatePoints spreads points on a circle around from, centered on the
// bearing toward to.
func candidatePoints(from, to domain.Coordinates, p AutoWaypointParams) []domain.Coordinates {
	base := from.BearingTo(to)

	bearings := []float64{base}
	if p.CandidatesPerStep > 1 {
		start := base - p.HeadingSpreadDeg/2
		step := p.HeadingSpreadDeg / float64(p.CandidatesPerStep-1)

		bearings = make([]float64, 0, p.CandidatesPerStep)
		for i := 0; i < p.CandidatesPerStep; i++ {
			bearings = append(bearings, start+float64(i)*step)
		}
	}

	out := make([]domain.Coordinates, 0, len(bearings))
	for _, b := range bearings {
		out = append(out, from.Offset(b, p.RadiusMeters))
	}
	return out
}
