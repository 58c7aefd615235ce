package services

import (
	"math"

	"relaxed-route-service/internal/domain"
)

// StressOptions tunes the stress formula.
//
// With NormalizeByDistance unset the stress score is the traffic delay in
// seconds. When set, the delay is divided by the route length in kilometers
// so long and short alternatives compare on delay per km.
type StressOptions struct {
	NormalizeByDistance bool
}

// EvaluateStress scores a single route from its traffic delay.
//
// The delay is floored at zero: providers can report a traffic duration
// slightly below the typical duration and a route never scores better than
// free flow. It is a pure function of its input.
func EvaluateStress(route domain.Route, opts StressOptions) (domain.StressScore, error) {
	if err := validateRoute(route); err != nil {
		return domain.StressScore{}, err
	}

	delay := math.Max(0, route.DurationInTrafficSeconds-route.DurationSeconds)

	stress := delay
	// Zero-length routes keep their raw delay.
	if opts.NormalizeByDistance && route.DistanceMeters > 0 {
		stress = delay / (route.DistanceMeters / 1000.0)
	}

	return domain.StressScore{DelaySeconds: delay, Stress: stress}, nil
}

func validateRoute(r domain.Route) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"distance_meters", r.DistanceMeters},
		{"duration_seconds", r.DurationSeconds},
		{"duration_in_traffic_seconds", r.DurationInTrafficSeconds},
	}

	for _, f := range fields {
		switch {
		case math.IsNaN(f.value) || math.IsInf(f.value, 0):
			return &domain.MalformedRouteDataError{Index: r.Index, Field: f.name, Value: f.value, Reason: "must be finite"}
		case f.value < 0:
			return &domain.MalformedRouteDataError{Index: r.Index, Field: f.name, Value: f.value, Reason: "must be non-negative"}
		}
	}

	return nil
}
