package domain

// Route is one candidate path between an origin and a destination as
// returned by the mapping provider. It is read-only planning data.
//
// Index is the route's position in the provider response and is kept so
// callers can report which alternative was picked.
type Route struct {
	Index                    int
	Summary                  string
	Polyline                 string
	DistanceMeters           float64
	DurationSeconds          float64
	DurationInTrafficSeconds float64
}

// StressScore is the traffic-induced stress derived from a single Route.
type StressScore struct {
	DelaySeconds float64
	Stress       float64
}

// ScoredRoute pairs a Route with its StressScore.
type ScoredRoute struct {
	Route Route
	Score StressScore
}

// SelectionResult is the outcome of choosing a route among candidates.
// EligibleRoutes keeps input order and includes the chosen route at
// position ChosenPosition.
type SelectionResult struct {
	BaselineDistanceMeters float64
	CeilingMeters          float64
	EligibleRoutes         []ScoredRoute
	Chosen                 ScoredRoute
	ChosenPosition         int
}

// Alternatives returns the eligible routes other than the chosen one.
func (r *SelectionResult) Alternatives() []ScoredRoute {
	out := make([]ScoredRoute, 0, len(r.EligibleRoutes))
	for i, sr := range r.EligibleRoutes {
		if i == r.ChosenPosition {
			continue
		}
		out = append(out, sr)
	}
	return out
}
