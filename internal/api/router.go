package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"relaxed-route-service/internal/api/handlers"
	"relaxed-route-service/internal/platform/metrics"
	"relaxed-route-service/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(collector ports.RouteCollector, geocoder ports.Geocoder, defaults handlers.RouteDefaults) http.Handler {
	metrics.Register()

	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Collector: collector,
		Geocoder:  geocoder,
		Defaults:  defaults,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes/relaxed", routeHandler.Relaxed)
	mux.HandleFunc("/routes/score", routeHandler.Score)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// Request ids are assigned before logging so every log line carries one.
	return requestIDMiddleware(loggingMiddleware(mux))
}
