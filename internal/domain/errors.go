package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCandidateRoutes is returned when there are no routes to choose from.
	ErrNoCandidateRoutes = errors.New("no candidate routes")

	// ErrNoEligibleRoute is returned when no candidate fits the detour budget.
	ErrNoEligibleRoute = errors.New("no route within the detour budget")

	// ErrInvalidDetourDistance is returned when a length-banded detour is
	// asked for a trip whose shortest route is not a positive distance.
	ErrInvalidDetourDistance = errors.New("detour band needs a positive shortest distance")
)

// MalformedRouteDataError reports a candidate route with a missing,
// negative or non-finite numeric field.
type MalformedRouteDataError struct {
	Index  int
	Field  string
	Value  float64
	Reason string
}

func (e *MalformedRouteDataError) Error() string {
	return fmt.Sprintf("malformed route data: route %d field %s=%v: %s", e.Index, e.Field, e.Value, e.Reason)
}

// InvalidConstraintError reports a negative or non-finite distance increase fraction.
type InvalidConstraintError struct {
	Fraction float64
}

func (e *InvalidConstraintError) Error() string {
	return fmt.Sprintf("invalid constraint: max distance increase fraction %v must be finite and >= 0", e.Fraction)
}
