package domain

// Travel modes accepted by the mapping provider.
const (
	TravelModeBicycling = "bicycling"
	TravelModeDriving   = "driving"
	TravelModeWalking   = "walking"
)

// RouteQuery describes one origin/destination lookup against the provider.
// Waypoints are addresses or "lat,lng" strings visited in order.
type RouteQuery struct {
	Origin            string
	Destination       string
	Waypoints         []string
	OptimizeWaypoints bool
	TravelMode        string
}
