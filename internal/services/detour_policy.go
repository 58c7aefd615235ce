package services

import (
	"fmt"
	"math"

	"relaxed-route-service/internal/domain"
)

// DefaultMaxDistanceIncrease allows up to 15% more distance than the shortest route.
const DefaultMaxDistanceIncrease = 0.15

// DetourPolicy decides how much extra distance a rider accepts for a
// given shortest-route length. It is a plain value passed in per query.
type DetourPolicy struct {
	// Fraction is the fixed allowed increase, used unless Banded is set.
	Fraction float64
	// Banded scales the allowance with trip length: short trips may double,
	// long trips may grow by half.
	Banded bool
}

// FixedDetour returns a policy that always allows fraction extra distance.
func FixedDetour(fraction float64) DetourPolicy {
	return DetourPolicy{Fraction: fraction}
}

// BandedDetour returns a policy whose allowance depends on trip length.
func BandedDetour() DetourPolicy {
	return DetourPolicy{Banded: true}
}

// MaxIncrease returns the allowed distance increase fraction for a trip
// whose shortest candidate is shortestMeters long.
func (p DetourPolicy) MaxIncrease(shortestMeters float64) (float64, error) {
	if !p.Banded {
		return p.Fraction, nil
	}

	ratio, err := maxDistanceRatio(shortestMeters / 1000.0)
	if err != nil {
		return 0, err
	}
	return ratio - 1, nil
}

// maxDistanceRatio maps a trip length in km to the max acceptable
// distance ratio over the shortest route.
func maxDistanceRatio(km float64) (float64, error) {
	switch {
	case math.IsNaN(km) || km <= 0:
		return 0, fmt.Errorf("detour policy: got %v km: %w", km, domain.ErrInvalidDetourDistance)
	case km <= 5:
		return 2.0, nil
	case km <= 10:
		return 1.7, nil
	default:
		return 1.5, nil
	}
}
