package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"relaxed-route-service/internal/adapters/directions"
	"relaxed-route-service/internal/api/dto"
	"relaxed-route-service/internal/domain"
	"relaxed-route-service/internal/platform/metrics"
	"relaxed-route-service/internal/platform/obs"
	"relaxed-route-service/internal/ports"
	"relaxed-route-service/internal/services"
)

// RouteDefaults are the server-side values used when a request leaves a
// setting out.
type RouteDefaults struct {
	MaxDistanceIncrease float64
	DistanceBanded      bool
	NormalizeByDistance bool
	TravelMode          string
}

type RouteHandler struct {
	Collector ports.RouteCollector
	Geocoder  ports.Geocoder
	Defaults  RouteDefaults
}

const maxCallerRoutes = 50

// Relaxed collects routes from the provider and returns the least stressful
// one within the detour budget, with the other eligible alternatives.
func (h *RouteHandler) Relaxed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.RelaxedRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	if origin == "" || destination == "" {
		writeError(w, r, http.StatusBadRequest, "origin and destination are required")
		return
	}

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = services.ModeNormal
	}
	switch mode {
	case services.ModeNormal, services.ModeManual, services.ModeAuto:
	default:
		writeError(w, r, http.StatusBadRequest, "mode must be one of normal, manual, auto")
		return
	}

	auto, err := autoParams(req.Auto)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	travelMode := strings.TrimSpace(req.TravelMode)
	if travelMode == "" {
		travelMode = h.Defaults.TravelMode
	}

	svcReq := services.RelaxedRouteRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
		TravelMode:  travelMode,
		Waypoints:   req.Waypoints,
		Policy:      h.policy(req.MaxDistanceIncrease, req.DistanceBanded),
		Stress:      h.stressOptions(req.NormalizeByDistance),
		Auto:        auto,
	}

	log.Printf(
		"req_id=%s relaxed route mode=%s origin=%q destination=%q waypoints=%d",
		obs.RequestID(r.Context()), mode, obs.SafeText(origin), obs.SafeText(destination), len(req.Waypoints),
	)

	res, err := services.FindRelaxedRoute(r.Context(), svcReq, h.Collector, h.Geocoder)
	if err != nil {
		if outcome := writeSelectionError(w, r, err); outcome != "" {
			metrics.Selections.WithLabelValues(mode, outcome).Inc()
			return
		}

		metrics.Selections.WithLabelValues(mode, "provider_error").Inc()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, r, http.StatusGatewayTimeout, "route lookup timed out")
			return
		}
		log.Printf("req_id=%s relaxed route failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusBadGateway, "route provider request failed")
		return
	}

	metrics.Selections.WithLabelValues(mode, "ok").Inc()
	metrics.ChosenStress.Observe(res.Chosen().Score.Stress)

	waypoints := res.Waypoints
	if waypoints == nil {
		waypoints = []string{}
	}

	writeJSON(w, r, http.StatusOK, dto.RelaxedRouteResponse{
		SelectionResponse: selectionResponse(res.Selection, res.MaxAllowedMeters),
		Mode:              res.Mode,
		CandidateCount:    res.CandidateCount,
		Waypoints:         waypoints,
		ShareURL:          directions.BuildShareableLink(origin, destination, res.Waypoints, travelMode),
	})
}

// Score runs the selection over caller-supplied routes without calling the provider.
func (h *RouteHandler) Score(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ScoreRoutesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Routes) > maxCallerRoutes {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("at most %d routes are accepted", maxCallerRoutes))
		return
	}

	routes := make([]domain.Route, 0, len(req.Routes))
	for i, in := range req.Routes {
		rt, err := routeFromInput(i, in)
		if err != nil {
			writeSelectionError(w, r, err)
			metrics.Selections.WithLabelValues("score", "malformed_route").Inc()
			return
		}
		routes = append(routes, rt)
	}

	sel, err := services.SelectWithPolicy(
		routes,
		h.policy(req.MaxDistanceIncrease, req.DistanceBanded),
		h.stressOptions(req.NormalizeByDistance),
	)
	if err != nil {
		if outcome := writeSelectionError(w, r, err); outcome != "" {
			metrics.Selections.WithLabelValues("score", outcome).Inc()
			return
		}
		metrics.Selections.WithLabelValues("score", "internal_error").Inc()
		log.Printf("req_id=%s score routes failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "route selection failed")
		return
	}

	metrics.Selections.WithLabelValues("score", "ok").Inc()
	writeJSON(w, r, http.StatusOK, selectionResponse(sel, sel.CeilingMeters))
}

func (h *RouteHandler) policy(maxIncrease *float64, banded *bool) services.DetourPolicy {
	p := services.DetourPolicy{
		Fraction: h.Defaults.MaxDistanceIncrease,
		Banded:   h.Defaults.DistanceBanded,
	}
	if banded != nil {
		p.Banded = *banded
	}
	// An explicit fraction always wins over banding.
	if maxIncrease != nil {
		p.Fraction = *maxIncrease
		p.Banded = false
	}
	return p
}

func (h *RouteHandler) stressOptions(normalize *bool) services.StressOptions {
	opts := services.StressOptions{NormalizeByDistance: h.Defaults.NormalizeByDistance}
	if normalize != nil {
		opts.NormalizeByDistance = *normalize
	}
	return opts
}

func autoParams(in *dto.AutoParams) (services.AutoWaypointParams, error) {
	p := services.DefaultAutoWaypointParams()
	if in == nil {
		return p, nil
	}

	if in.RadiusMeters != nil {
		if *in.RadiusMeters < 250 || *in.RadiusMeters > 5000 {
			return p, errors.New("auto.radius_m must be between 250 and 5000")
		}
		p.RadiusMeters = *in.RadiusMeters
	}
	if in.CandidatesPerStep != nil {
		if *in.CandidatesPerStep < 4 || *in.CandidatesPerStep > 24 {
			return p, errors.New("auto.candidates_per_step must be between 4 and 24")
		}
		p.CandidatesPerStep = *in.CandidatesPerStep
	}
	if in.HeadingSpreadDeg != nil {
		if *in.HeadingSpreadDeg < 10 || *in.HeadingSpreadDeg > 180 {
			return p, errors.New("auto.heading_spread_deg must be between 10 and 180")
		}
		p.HeadingSpreadDeg = *in.HeadingSpreadDeg
	}
	if in.MaxWaypoints != nil {
		if *in.MaxWaypoints < 0 || *in.MaxWaypoints > 20 {
			return p, errors.New("auto.max_waypoints must be between 0 and 20")
		}
		p.MaxWaypoints = *in.MaxWaypoints
	}

	return p, nil
}

// routeFromInput converts a caller route, rejecting missing metrics rather
// than treating them as zero.
func routeFromInput(i int, in dto.RouteInput) (domain.Route, error) {
	fields := []struct {
		name string
		v    *float64
	}{
		{"distance_meters", in.DistanceMeters},
		{"duration_seconds", in.DurationSeconds},
		{"duration_in_traffic_seconds", in.DurationInTrafficSeconds},
	}
	for _, f := range fields {
		if f.v == nil {
			return domain.Route{}, &domain.MalformedRouteDataError{Index: i, Field: f.name, Reason: "missing"}
		}
	}

	return domain.Route{
		Index:                    i,
		Summary:                  in.Summary,
		DistanceMeters:           *in.DistanceMeters,
		DurationSeconds:          *in.DurationSeconds,
		DurationInTrafficSeconds: *in.DurationInTrafficSeconds,
	}, nil
}

func scoredRouteResponse(sr domain.ScoredRoute) dto.ScoredRouteResponse {
	return dto.ScoredRouteResponse{
		Index:                    sr.Route.Index,
		Summary:                  sr.Route.Summary,
		Polyline:                 sr.Route.Polyline,
		DistanceMeters:           sr.Route.DistanceMeters,
		DurationSeconds:          sr.Route.DurationSeconds,
		DurationInTrafficSeconds: sr.Route.DurationInTrafficSeconds,
		DelaySeconds:             sr.Score.DelaySeconds,
		StressScore:              sr.Score.Stress,
	}
}

func selectionResponse(sel *domain.SelectionResult, maxAllowed float64) dto.SelectionResponse {
	eligible := make([]dto.ScoredRouteResponse, 0, len(sel.EligibleRoutes))
	for _, sr := range sel.EligibleRoutes {
		eligible = append(eligible, scoredRouteResponse(sr))
	}

	return dto.SelectionResponse{
		Chosen:                 scoredRouteResponse(sel.Chosen),
		Eligible:               eligible,
		BaselineDistanceMeters: sel.BaselineDistanceMeters,
		MaxAllowedMeters:       maxAllowed,
	}
}
