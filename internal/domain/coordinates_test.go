package domain

import (
	"math"
	"testing"
)

func TestCoordinatesBearingTo(t *testing.T) {
	origin := Coordinates{Lat: 0, Lng: 0}

	cases := []struct {
		name string
		to   Coordinates
		want float64
	}{
		{"north", Coordinates{Lat: 1, Lng: 0}, 0},
		{"east", Coordinates{Lat: 0, Lng: 1}, 90},
		{"south", Coordinates{Lat: -1, Lng: 0}, 180},
		{"west", Coordinates{Lat: 0, Lng: -1}, 270},
	}

	for _, tc := range cases {
		got := origin.BearingTo(tc.to)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: bearing = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCoordinatesOffsetRoundTrip(t *testing.T) {
	start := Coordinates{Lat: 28.613939, Lng: 77.209021}

	moved := start.Offset(45, 1000)
	bearing := start.BearingTo(moved)
	if math.Abs(bearing-45) > 0.01 {
		t.Fatalf("bearing to offset point = %v, want ~45", bearing)
	}

	// One degree of latitude is ~111.2 km on the sphere used here.
	north := start.Offset(0, 111195)
	if math.Abs(north.Lat-(start.Lat+1)) > 0.001 {
		t.Fatalf("lat after 111.195km north = %v, want ~%v", north.Lat, start.Lat+1)
	}
}

func TestCoordinatesOffsetWrapsLongitude(t *testing.T) {
	c := Coordinates{Lat: 0, Lng: 179.999}.Offset(90, 1000)
	if c.Lng >= 180 || c.Lng < -180 {
		t.Fatalf("longitude %v outside [-180, 180)", c.Lng)
	}
	if c.Lng > 0 {
		t.Fatalf("expected wrap to negative longitude, got %v", c.Lng)
	}
}

func TestCoordinatesString(t *testing.T) {
	got := Coordinates{Lat: 28.6139391, Lng: -77.2}.String()
	if got != "28.613939,-77.200000" {
		t.Fatalf("String() = %q", got)
	}
}
