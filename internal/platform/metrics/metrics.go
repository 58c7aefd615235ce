package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// Selections counts route selections by mode and outcome.
	Selections = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_selections_total", Help: "Route selections by mode and outcome."},
		[]string{"mode", "outcome"},
	)
	// ChosenStress observes the stress score of chosen routes.
	ChosenStress = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "route_chosen_stress", Help: "Stress score of chosen routes.", Buckets: []float64{0, 30, 60, 120, 300, 600, 1200}},
	)

	// ProviderRequests counts outbound mapping provider calls by endpoint and status.
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "provider_requests_total", Help: "Mapping provider requests by endpoint and status."},
		[]string{"endpoint", "status"},
	)
	// CacheLookups counts cache lookups by cache name and result.
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "cache_lookups_total", Help: "Cache lookups by cache and result."},
		[]string{"cache", "result"},
	)
)

var regOnce sync.Once

// Register adds all collectors to Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Selections)
		Registry.MustRegister(ChosenStress)
		Registry.MustRegister(ProviderRequests)
		Registry.MustRegister(CacheLookups)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
