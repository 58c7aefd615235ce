package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaxed-route-service/internal/adapters/directions"
	"relaxed-route-service/internal/api/dto"
	"relaxed-route-service/internal/api/handlers"
	"relaxed-route-service/internal/domain"
)

var testDefaults = handlers.RouteDefaults{
	MaxDistanceIncrease: 0.15,
	TravelMode:          domain.TravelModeBicycling,
}

func rt(distance, duration, traffic float64) domain.Route {
	return domain.Route{
		DistanceMeters:           distance,
		DurationSeconds:          duration,
		DurationInTrafficSeconds: traffic,
	}
}

func newTestRouter(mock *directions.MockRouteCollector) http.Handler {
	return NewRouter(mock, mock, testDefaults)
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestRouter(directions.NewMockRouteCollector())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestMetricPathBoundsCardinality(t *testing.T) {
	assert.Equal(t, "/routes/score", metricPath("/routes/score"))
	assert.Equal(t, "other", metricPath("/routes/score/123"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestRouter(directions.NewMockRouteCollector())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestRelaxedNormalMode(t *testing.T) {
	mock := directions.NewMockRouteCollector().Add("A", "B", nil,
		rt(10000, 1200, 1500),
		rt(11000, 1300, 1320),
		rt(12000, 1400, 1400),
	)
	h := newTestRouter(mock)

	rec := post(t, h, "/routes/relaxed", `{"origin":"A","destination":"B"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.RelaxedRouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "normal", resp.Mode)
	assert.Equal(t, 1, resp.Chosen.Index)
	assert.InDelta(t, 20, resp.Chosen.StressScore, 1e-9)
	assert.InDelta(t, 10000, resp.BaselineDistanceMeters, 1e-9)
	assert.InDelta(t, 11500, resp.MaxAllowedMeters, 1e-6)
	assert.Len(t, resp.Eligible, 2)
	assert.Equal(t, 3, resp.CandidateCount)
	assert.Contains(t, resp.ShareURL, "travelmode=bicycling")
	assert.Equal(t, []string{}, resp.Waypoints)

	require.Len(t, mock.Queries, 1)
	assert.Equal(t, domain.TravelModeBicycling, mock.Queries[0].TravelMode)
}

func TestRelaxedManualModePassesWaypoints(t *testing.T) {
	mock := directions.NewMockRouteCollector().Add("A", "B", []string{"Park", "Lake"},
		rt(9000, 1000, 1000),
	)
	h := newTestRouter(mock)

	rec := post(t, h, "/routes/relaxed", `{"origin":"A","destination":"B","mode":"manual","waypoints":[" Park ","","Lake"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.RelaxedRouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Park", "Lake"}, resp.Waypoints)
	assert.Contains(t, resp.ShareURL, "waypoints=Park|Lake")
}

func TestRelaxedErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		mock   func() *directions.MockRouteCollector
		body   string
		status int
	}{
		{
			name:   "missing origin",
			mock:   directions.NewMockRouteCollector,
			body:   `{"destination":"B"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			mock:   directions.NewMockRouteCollector,
			body:   `{"origin":"A","destination":"B","bogus":1}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown mode",
			mock:   directions.NewMockRouteCollector,
			body:   `{"origin":"A","destination":"B","mode":"scenic"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "auto radius out of range",
			mock:   directions.NewMockRouteCollector,
			body:   `{"origin":"A","destination":"B","mode":"auto","auto":{"radius_m":10}}`,
			status: http.StatusBadRequest,
		},
		{
			name: "no routes",
			mock: func() *directions.MockRouteCollector {
				return directions.NewMockRouteCollector().Add("A", "B", nil)
			},
			body:   `{"origin":"A","destination":"B"}`,
			status: http.StatusNotFound,
		},
		{
			name: "negative budget",
			mock: func() *directions.MockRouteCollector {
				return directions.NewMockRouteCollector().Add("A", "B", nil, rt(1000, 100, 100))
			},
			body:   `{"origin":"A","destination":"B","max_distance_increase":-0.1}`,
			status: http.StatusBadRequest,
		},
		{
			name: "banded detour with zero-length route",
			mock: func() *directions.MockRouteCollector {
				return directions.NewMockRouteCollector().Add("A", "B", nil, rt(0, 0, 0))
			},
			body:   `{"origin":"A","destination":"B","distance_banded":true}`,
			status: http.StatusBadRequest,
		},
		{
			name: "provider failure",
			mock: func() *directions.MockRouteCollector {
				m := directions.NewMockRouteCollector()
				m.Fallback = func(domain.RouteQuery) ([]domain.Route, error) {
					return nil, errors.New("upstream down")
				}
				return m
			},
			body:   `{"origin":"A","destination":"B"}`,
			status: http.StatusBadGateway,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(t, newTestRouter(tc.mock()), "/routes/relaxed", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRelaxedAutoModeReportsBaseline(t *testing.T) {
	mock := directions.NewMockRouteCollector().
		Add("A", "B", nil, rt(1000, 600, 900)).
		AddPlace("A", domain.Coordinates{Lat: 0, Lng: 0}).
		AddPlace("B", domain.Coordinates{Lat: 0, Lng: 0.01})
	mock.Fallback = func(q domain.RouteQuery) ([]domain.Route, error) {
		if len(q.Waypoints) == 1 {
			return []domain.Route{rt(1140, 620, 630)}, nil
		}
		return []domain.Route{rt(1600, 620, 620)}, nil
	}

	rec := post(t, newTestRouter(mock), "/routes/relaxed", `{"origin":"A","destination":"B","mode":"auto"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.RelaxedRouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "auto", resp.Mode)
	assert.Len(t, resp.Waypoints, 1)
	assert.InDelta(t, 1140, resp.Chosen.DistanceMeters, 1e-9)
	assert.InDelta(t, 1000, resp.BaselineDistanceMeters, 1e-9)
	assert.InDelta(t, 1150, resp.MaxAllowedMeters, 1e-6)
	assert.Equal(t, 1, resp.CandidateCount)
}

func TestScoreBandedZeroDistance(t *testing.T) {
	rec := post(t, newTestRouter(directions.NewMockRouteCollector()), "/routes/score", `{"routes":[
		{"distance_meters":0,"duration_seconds":0,"duration_in_traffic_seconds":0}
	],"distance_banded":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestRelaxedRejectsGet(t *testing.T) {
	h := newTestRouter(directions.NewMockRouteCollector())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes/relaxed", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestScoreSelectsLeastStressful(t *testing.T) {
	h := newTestRouter(directions.NewMockRouteCollector())

	body := `{"routes":[
		{"distance_meters":10000,"duration_seconds":1200,"duration_in_traffic_seconds":1500},
		{"distance_meters":11000,"duration_seconds":1300,"duration_in_traffic_seconds":1320},
		{"distance_meters":12000,"duration_seconds":1400,"duration_in_traffic_seconds":1400}
	],"max_distance_increase":0.25}`

	rec := post(t, h, "/routes/score", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.SelectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Chosen.Index)
	assert.InDelta(t, 0, resp.Chosen.StressScore, 1e-9)
	assert.InDelta(t, 12500, resp.MaxAllowedMeters, 1e-6)
	assert.Len(t, resp.Eligible, 3)
}

func TestScoreErrorMapping(t *testing.T) {
	h := newTestRouter(directions.NewMockRouteCollector())

	t.Run("empty list", func(t *testing.T) {
		rec := post(t, h, "/routes/score", `{"routes":[]}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing metric names the route", func(t *testing.T) {
		rec := post(t, h, "/routes/score", `{"routes":[
			{"distance_meters":1000,"duration_seconds":100,"duration_in_traffic_seconds":100},
			{"distance_meters":1000,"duration_seconds":100}
		]}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.RouteIndex)
		assert.Equal(t, 1, *resp.RouteIndex)
	})

	t.Run("negative distance", func(t *testing.T) {
		rec := post(t, h, "/routes/score", `{"routes":[
			{"distance_meters":-5,"duration_seconds":100,"duration_in_traffic_seconds":100}
		]}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.RouteIndex)
		assert.Equal(t, 0, *resp.RouteIndex)
	})

	t.Run("too many routes", func(t *testing.T) {
		var b bytes.Buffer
		b.WriteString(`{"routes":[`)
		for i := 0; i < 51; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(`{"distance_meters":1000,"duration_seconds":100,"duration_in_traffic_seconds":100}`)
		}
		b.WriteString(`]}`)

		rec := post(t, h, "/routes/score", b.String())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	mock := directions.NewMockRouteCollector().Add("A", "B", nil, rt(1000, 100, 120))
	h := newTestRouter(mock)

	rec := post(t, h, "/routes/relaxed", `{"origin":"A","destination":"B"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "route_selections_total")
	assert.Contains(t, body, `path="/routes/relaxed"`)
}
