package handlers

import (
	"net/http"

	"relaxed-route-service/internal/api/dto"
)

// Health reports liveness. It does not call the route provider.
func Health(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	default:
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.HealthResponse{Status: "ok", Service: "relaxed-route"})
}
