package services

import (
	"math"

	"relaxed-route-service/internal/domain"
)

// Relative tolerance applied to the detour ceiling so rounding never
// excludes the baseline route.
const ceilingEpsilon = 1e-6

// SelectRoute picks the least stressful route whose distance stays within
// maxIncrease (a fraction, 0.15 = 15%) of the shortest candidate.
//
// Every route is validated before filtering so a malformed candidate fails
// the whole selection with its index. Ties on stress are broken by shorter
// distance, then by input order. The input slice is not modified.
func SelectRoute(routes []domain.Route, maxIncrease float64, opts StressOptions) (*domain.SelectionResult, error) {
	if len(routes) == 0 {
		return nil, domain.ErrNoCandidateRoutes
	}

	if math.IsNaN(maxIncrease) || math.IsInf(maxIncrease, 0) || maxIncrease < 0 {
		return nil, &domain.InvalidConstraintError{Fraction: maxIncrease}
	}

	for _, r := range routes {
		if err := validateRoute(r); err != nil {
			return nil, err
		}
	}

	baseline := routes[0].DistanceMeters
	for _, r := range routes[1:] {
		baseline = math.Min(baseline, r.DistanceMeters)
	}

	ceiling := baseline * (1 + maxIncrease)
	tolerance := ceiling * ceilingEpsilon

	eligible := make([]domain.ScoredRoute, 0, len(routes))
	for _, r := range routes {
		if r.DistanceMeters > ceiling+tolerance {
			continue
		}

		score, err := EvaluateStress(r, opts)
		if err != nil {
			return nil, err
		}
		eligible = append(eligible, domain.ScoredRoute{Route: r, Score: score})
	}

	if len(eligible) == 0 {
		return nil, domain.ErrNoEligibleRoute
	}

	best := 0
	for i := 1; i < len(eligible); i++ {
		if isLessStressful(eligible[i], eligible[best]) {
			best = i
		}
	}

	return &domain.SelectionResult{
		BaselineDistanceMeters: baseline,
		CeilingMeters:          ceiling,
		EligibleRoutes:         eligible,
		Chosen:                 eligible[best],
		ChosenPosition:         best,
	}, nil
}

// isLessStressful orders by stress, then distance. Equal routes keep the
// earlier one since the caller scans in input order.
func isLessStressful(a, b domain.ScoredRoute) bool {
	if a.Score.Stress != b.Score.Stress {
		return a.Score.Stress < b.Score.Stress
	}
	return a.Route.DistanceMeters < b.Route.DistanceMeters
}
