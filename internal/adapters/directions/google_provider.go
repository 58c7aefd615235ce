package directions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"relaxed-route-service/internal/domain"
	"relaxed-route-service/internal/platform/obs"
	"relaxed-route-service/internal/ports"
)

const (
	defaultBaseURL = "https://maps.googleapis.com"
	defaultRPS     = 10
)

// Options configures a GoogleDirectionsProvider. Zero values pick defaults.
type Options struct {
	BaseURL       string
	HTTPClient    *http.Client
	RouteCache    ports.RouteCache
	GeocodeCache  ports.GeocodeCache
	RouteCacheTTL time.Duration
	// RequestsPerSecond caps outbound calls; the auto waypoint search can
	// issue dozens of Directions requests per query.
	RequestsPerSecond float64
}

// GoogleDirectionsProvider implements RouteCollector and Geocoder using the
// Google Directions and Geocoding APIs.
//
// It coordinates:
//   - Query normalization
//   - Short-lived route-set caching (traffic changes quickly)
//   - Persistent geocode caching
//   - Rate limited external API calls with retry/backoff
//
// The provider is safe for concurrent use.
type GoogleDirectionsProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	routeCache    ports.RouteCache
	geocodeCache  ports.GeocodeCache
	routeCacheTTL time.Duration
	limiter       *rate.Limiter
}

func NewGoogleDirectionsProvider(apiKey string, opts Options) (*GoogleDirectionsProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google maps api key is empty")
	}

	session := opts.HTTPClient
	if session == nil {
		session = &http.Client{Timeout: 10 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}

	provider := &GoogleDirectionsProvider{
		session:       session,
		apiKey:        apiKey,
		baseURL:       baseURL,
		routeCache:    opts.RouteCache,
		geocodeCache:  opts.GeocodeCache,
		routeCacheTTL: opts.RouteCacheTTL,
		limiter:       rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// routeCacheKey identifies a query independently of incidental whitespace.
func routeCacheKey(q domain.RouteQuery, waypoints string) string {
	return strings.Join([]string{
		normalize(q.TravelMode),
		normalize(q.Origin),
		normalize(q.Destination),
		waypoints,
	}, "|")
}

// GetRoutes returns the provider's alternative routes for the query.
func (g *GoogleDirectionsProvider) GetRoutes(
	ctx context.Context,
	q domain.RouteQuery,
) (_ []domain.Route, err error) {
	defer obs.Time(ctx, "google.GetRoutes")(&err)

	origin := normalize(q.Origin)
	destination := normalize(q.Destination)
	if origin == "" || destination == "" {
		return nil, errors.New("get routes: origin and destination must be non-empty")
	}

	q.Origin = origin
	q.Destination = destination
	if q.TravelMode == "" {
		q.TravelMode = domain.TravelModeBicycling
	}

	waypoints := serializeWaypoints(q.Waypoints, q.OptimizeWaypoints)
	key := routeCacheKey(q, waypoints)

	// Check the route cache before issuing external API calls.
	if g.routeCache != nil {
		routes, ok, err := g.routeCache.Get(ctx, key)
		if err != nil {
			log.Printf("route cache read failed: %v", err)
		} else if ok {
			return routes, nil
		}
	}

	routes, err := g.fetchRoutes(ctx, q, waypoints)
	if err != nil {
		return nil, fmt.Errorf("get routes: %w", err)
	}

	if g.routeCache != nil && g.routeCacheTTL > 0 {
		if err := g.routeCache.Put(ctx, key, routes, g.routeCacheTTL); err != nil {
			log.Printf("route cache write failed: %v", err)
		}
	}

	return routes, nil
}

// Geocode resolves an address into coordinates, using the geocode cache first.
func (g *GoogleDirectionsProvider) Geocode(
	ctx context.Context,
	address string,
) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "google.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if g.geocodeCache != nil {
		hits, err := g.geocodeCache.GetMany(ctx, []string{norm})
		if err != nil {
			log.Printf("geocode cache read failed: %v", err)
		} else if c, ok := hits[norm]; ok {
			return c, nil
		}
	}

	coord, err := g.fetchGeocode(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", obs.SafeText(norm), err)
	}

	if g.geocodeCache != nil {
		if err := g.geocodeCache.PutMany(ctx, map[string]domain.Coordinates{norm: coord}); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return coord, nil
}
