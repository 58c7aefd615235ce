package dto

type AutoParams struct {
	RadiusMeters      *float64 `json:"radius_m"`
	CandidatesPerStep *int     `json:"candidates_per_step"`
	HeadingSpreadDeg  *float64 `json:"heading_spread_deg"`
	MaxWaypoints      *int     `json:"max_waypoints"`
}

type RelaxedRouteRequest struct {
	Origin              string      `json:"origin"`
	Destination         string      `json:"destination"`
	Mode                string      `json:"mode"`
	TravelMode          string      `json:"travel_mode"`
	Waypoints           []string    `json:"waypoints"`
	MaxDistanceIncrease *float64    `json:"max_distance_increase"`
	DistanceBanded      *bool       `json:"distance_banded"`
	NormalizeByDistance *bool       `json:"normalize_by_distance"`
	Auto                *AutoParams `json:"auto"`
}

type RouteInput struct {
	DistanceMeters           *float64 `json:"distance_meters"`
	DurationSeconds          *float64 `json:"duration_seconds"`
	DurationInTrafficSeconds *float64 `json:"duration_in_traffic_seconds"`
	Summary                  string   `json:"summary"`
}

type ScoreRoutesRequest struct {
	Routes              []RouteInput `json:"routes"`
	MaxDistanceIncrease *float64     `json:"max_distance_increase"`
	DistanceBanded      *bool        `json:"distance_banded"`
	NormalizeByDistance *bool        `json:"normalize_by_distance"`
}

type ScoredRouteResponse struct {
	Index                    int     `json:"index"`
	Summary                  string  `json:"summary,omitempty"`
	Polyline                 string  `json:"polyline,omitempty"`
	DistanceMeters           float64 `json:"distance_meters"`
	DurationSeconds          float64 `json:"duration_seconds"`
	DurationInTrafficSeconds float64 `json:"duration_in_traffic_seconds"`
	DelaySeconds             float64 `json:"delay_seconds"`
	StressScore              float64 `json:"stress_score"`
}

type SelectionResponse struct {
	Chosen                 ScoredRouteResponse   `json:"chosen"`
	Eligible               []ScoredRouteResponse `json:"eligible"`
	BaselineDistanceMeters float64               `json:"baseline_distance_meters"`
	MaxAllowedMeters       float64               `json:"max_allowed_meters"`
}

type RelaxedRouteResponse struct {
	SelectionResponse
	Mode           string   `json:"mode"`
	CandidateCount int      `json:"candidate_count"`
	Waypoints      []string `json:"waypoints"`
	ShareURL       string   `json:"share_url"`
}

type ErrorResponse struct {
	Error      string `json:"error"`
	RouteIndex *int   `json:"route_index,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
