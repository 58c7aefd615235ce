package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"relaxed-route-service/internal/domain"
	"relaxed-route-service/internal/platform/metrics"
	"relaxed-route-service/internal/platform/obs"
)

// SQLRouteCache is a Postgres-backed cache for provider route sets.
type SQLRouteCache struct {
	DB *sql.DB
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db}
}

// Fetch the cached routes for key if present and not expired.
func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ []domain.Route, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT routes_json
    FROM route_cache
    WHERE cache_key = $1
        AND expires_at > now();
	`

	var payload []byte
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.CacheLookups.WithLabelValues("route_postgres", "miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	routes, err := decodeRoutes(payload)
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	metrics.CacheLookups.WithLabelValues("route_postgres", "hit").Inc()
	return routes, true, nil
}

// Store routes under key for ttl.
func (s *SQLRouteCache) Put(ctx context.Context, key string, routes []domain.Route, ttl time.Duration) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	if ttl <= 0 {
		return nil
	}

	payload, err := encodeRoutes(routes)
	if err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO route_cache (cache_key, routes_json, expires_at)
    VALUES ($1, $2, now() + $3 * interval '1 millisecond')
	ON CONFLICT (cache_key) DO UPDATE
	SET routes_json = EXCLUDED.routes_json,
		expires_at = EXCLUDED.expires_at;
	`, key, payload, ttl.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
