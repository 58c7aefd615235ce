package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"relaxed-route-service/internal/api/dto"
	"relaxed-route-service/internal/domain"
	"relaxed-route-service/internal/platform/obs"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: req_id=%s method=%s path=%s err=%v", obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

// decodeJSON reads exactly one JSON object and rejects unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// writeSelectionError maps selection error kinds to HTTP responses.
// It returns the metrics outcome label.
func writeSelectionError(w http.ResponseWriter, r *http.Request, err error) string {
	var mre *domain.MalformedRouteDataError
	var ice *domain.InvalidConstraintError

	switch {
	case errors.As(err, &mre):
		idx := mre.Index
		writeJSON(w, r, http.StatusBadRequest, dto.ErrorResponse{Error: mre.Error(), RouteIndex: &idx})
		return "malformed_route"
	case errors.As(err, &ice):
		writeError(w, r, http.StatusBadRequest, ice.Error())
		return "invalid_constraint"
	case errors.Is(err, domain.ErrInvalidDetourDistance):
		writeError(w, r, http.StatusBadRequest, "distance-banded detour needs a shortest route longer than 0 m")
		return "invalid_constraint"
	case errors.Is(err, domain.ErrNoCandidateRoutes):
		writeError(w, r, http.StatusNotFound, "no routes available")
		return "no_candidates"
	case errors.Is(err, domain.ErrNoEligibleRoute):
		writeError(w, r, http.StatusUnprocessableEntity, "no route within the detour budget")
		return "no_eligible"
	default:
		return ""
	}
}
