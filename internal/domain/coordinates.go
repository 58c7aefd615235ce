package domain

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// Immutable geographic coordinates.
type Coordinates struct {
	Lat float64
	Lng float64
}

// String formats coordinates as a "lat,lng" waypoint accepted by the provider.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// BearingTo returns the initial bearing from c to other in degrees [0, 360).
func (c Coordinates) BearingTo(other Coordinates) float64 {
	phi1 := radians(c.Lat)
	phi2 := radians(other.Lat)
	dLambda := radians(other.Lng - c.Lng)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	return math.Mod(degrees(math.Atan2(y, x))+360.0, 360.0)
}

// Offset moves from c along bearingDeg by distanceMeters on a spherical earth.
func (c Coordinates) Offset(bearingDeg, distanceMeters float64) Coordinates {
	delta := distanceMeters / earthRadiusMeters
	theta := radians(bearingDeg)

	phi1 := radians(c.Lat)
	lambda1 := radians(c.Lng)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))

	y := math.Sin(theta) * math.Sin(delta) * math.Cos(phi1)
	x := math.Cos(delta) - math.Sin(phi1)*math.Sin(phi2)
	lambda2 := lambda1 + math.Atan2(y, x)

	// Normalize longitude into [-180, 180).
	lng := math.Mod(degrees(lambda2)+540.0, 360.0) - 180.0

	return Coordinates{Lat: degrees(phi2), Lng: lng}
}

func radians(d float64) float64 { return d * math.Pi / 180.0 }
func degrees(r float64) float64 { return r * 180.0 / math.Pi }
