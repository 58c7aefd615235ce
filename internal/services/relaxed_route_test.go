package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaxed-route-service/internal/adapters/directions"
	"relaxed-route-service/internal/domain"
)

func TestFindRelaxedRouteNormal(t *testing.T) {
	collector := directions.NewMockRouteCollector().
		Add("Home", "Work", nil, route(0, 1000, 600, 900), route(1, 1100, 620, 650))

	res, err := FindRelaxedRoute(context.Background(), RelaxedRouteRequest{
		Origin:      " Home ",
		Destination: "Work",
		Policy:      FixedDetour(0.15),
	}, collector, nil)
	require.NoError(t, err)

	assert.Equal(t, ModeNormal, res.Mode)
	assert.Equal(t, 1, res.Chosen().Route.Index)
	assert.Equal(t, 2, res.CandidateCount)
	assert.InDelta(t, 1150.0, res.MaxAllowedMeters, 1e-9)
	require.Len(t, collector.Queries, 1)
	assert.Equal(t, domain.TravelModeBicycling, collector.Queries[0].TravelMode)
}

func TestFindRelaxedRouteManualWaypoints(t *testing.T) {
	collector := directions.NewMockRouteCollector().
		Add("Home", "Work", []string{"Park", "Lake"}, route(0, 1300, 700, 710))

	res, err := FindRelaxedRoute(context.Background(), RelaxedRouteRequest{
		Origin:      "Home",
		Destination: "Work",
		Mode:        ModeManual,
		Waypoints:   []string{" Park", "", "Lake "},
		Policy:      FixedDetour(0.15),
	}, collector, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Park", "Lake"}, res.Waypoints)
	assert.Equal(t, 10.0, res.Chosen().Score.Stress)
}

func TestFindRelaxedRouteAuto(t *testing.T) {
	collector := directions.NewMockRouteCollector().
		Add("Home", "Work", nil, route(0, 1000, 600, 650)).
		AddPlace("Home", testOrigin).
		AddPlace("Work", testDest)
	collector.Fallback = func(q domain.RouteQuery) ([]domain.Route, error) {
		return []domain.Route{route(0, 5000, 600, 600)}, nil
	}

	res, err := FindRelaxedRoute(context.Background(), RelaxedRouteRequest{
		Origin:      "Home",
		Destination: "Work",
		Mode:        ModeAuto,
		Policy:      FixedDetour(0.15),
	}, collector, collector)
	require.NoError(t, err)

	assert.Equal(t, ModeAuto, res.Mode)
	assert.Empty(t, res.Waypoints)
	assert.Equal(t, 50.0, res.Chosen().Score.Stress)
}

func TestFindRelaxedRouteAutoReportsBaselineDistance(t *testing.T) {
	collector := directions.NewMockRouteCollector().
		Add("Home", "Work", nil, route(0, 1000, 600, 900)).
		AddPlace("Home", testOrigin).
		AddPlace("Work", testDest)
	collector.Fallback = func(q domain.RouteQuery) ([]domain.Route, error) {
		if len(q.Waypoints) == 1 {
			return []domain.Route{route(0, 1140, 620, 630)}, nil
		}
		return []domain.Route{route(0, 1600, 620, 620)}, nil
	}

	res, err := FindRelaxedRoute(context.Background(), RelaxedRouteRequest{
		Origin:      "Home",
		Destination: "Work",
		Mode:        ModeAuto,
		Policy:      FixedDetour(0.15),
	}, collector, collector)
	require.NoError(t, err)

	require.Len(t, res.Waypoints, 1)
	assert.Equal(t, 1140.0, res.Chosen().Route.DistanceMeters)
	assert.Equal(t, 1000.0, res.Selection.BaselineDistanceMeters)
	assert.InDelta(t, 1150.0, res.MaxAllowedMeters, 1e-9)
	assert.InDelta(t, res.MaxAllowedMeters, res.Selection.CeilingMeters, 1e-9)
	assert.Equal(t, 1, res.CandidateCount)
}

func TestFindRelaxedRouteBandedZeroDistance(t *testing.T) {
	collector := directions.NewMockRouteCollector().
		Add("Home", "Work", nil, route(0, 0, 0, 0))

	_, err := FindRelaxedRoute(context.Background(), RelaxedRouteRequest{
		Origin:      "Home",
		Destination: "Work",
		Policy:      BandedDetour(),
	}, collector, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDetourDistance)
}

func TestFindRelaxedRouteErrors(t *testing.T) {
	collector := directions.NewMockRouteCollector().Add("Home", "Work", nil)

	_, err := FindRelaxedRoute(context.Background(), RelaxedRouteRequest{Origin: "Home", Destination: "Work"}, collector, nil)
	assert.ErrorIs(t, err, domain.ErrNoCandidateRoutes)

	_, err = FindRelaxedRoute(context.Background(), RelaxedRouteRequest{Origin: "", Destination: "Work"}, collector, nil)
	assert.Error(t, err)

	_, err = FindRelaxedRoute(context.Background(), RelaxedRouteRequest{Origin: "Home", Destination: "Work", Mode: "teleport"}, collector, nil)
	assert.Error(t, err)

	_, err = FindRelaxedRoute(context.Background(), RelaxedRouteRequest{Origin: "Home", Destination: "Work", Mode: ModeAuto}, collector, nil)
	assert.Error(t, err)

	_, err = FindRelaxedRoute(context.Background(), RelaxedRouteRequest{
		Origin: "Home", Destination: "Work", Policy: FixedDetour(-0.1),
	}, directions.NewMockRouteCollector().Add("Home", "Work", nil, route(0, 1, 1, 1)), nil)
	var ice *domain.InvalidConstraintError
	assert.True(t, errors.As(err, &ice), "err = %v", err)
}

func TestFindRelaxedRoutePropagatesProviderFailure(t *testing.T) {
	providerErr := errors.New("quota exceeded")
	collector := directions.NewMockRouteCollector()
	collector.Fallback = func(q domain.RouteQuery) ([]domain.Route, error) { return nil, providerErr }

	_, err := FindRelaxedRoute(context.Background(), RelaxedRouteRequest{Origin: "Home", Destination: "Work"}, collector, nil)
	assert.ErrorIs(t, err, providerErr)
	assert.Equal(t, 1, collector.QueryCount())
}

func TestSelectWithPolicyBanded(t *testing.T) {
	// 3 km shortest route: banded policy allows doubling the distance.
	routes := []domain.Route{route(0, 3000, 600, 900), route(1, 5900, 900, 910)}

	res, err := SelectWithPolicy(routes, BandedDetour(), StressOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Chosen.Route.Index)
	assert.Equal(t, 6000.0, res.CeilingMeters)

	_, err = SelectWithPolicy(nil, BandedDetour(), StressOptions{})
	assert.ErrorIs(t, err, domain.ErrNoCandidateRoutes)
}

func TestParseWaypointsCSV(t *testing.T) {
	assert.Equal(t, []string{"Park", "Lake"}, ParseWaypointsCSV(" Park, ,Lake "))
	assert.Nil(t, ParseWaypointsCSV("  "))
}
