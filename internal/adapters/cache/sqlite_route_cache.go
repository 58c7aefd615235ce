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

// SQLite backed cache for provider route sets.
// Keys are expected to be normalized by the caller.
type SqliteRouteCache struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSqliteRouteCache(db *sql.DB) *SqliteRouteCache {
	return &SqliteRouteCache{DB: db, now: time.Now}
}

// Fetch the cached routes for key if present and not expired.
func (s *SqliteRouteCache) Get(ctx context.Context, key string) (_ []domain.Route, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.sqlite.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT
        routes_json,
        expires_at
    FROM route_cache
    WHERE cache_key = ?;
	`

	var payload string
	var expiresAt int64
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.CacheLookups.WithLabelValues("route_sqlite", "miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	if s.now().Unix() >= expiresAt {
		metrics.CacheLookups.WithLabelValues("route_sqlite", "expired").Inc()
		return nil, false, nil
	}

	routes, err := decodeRoutes([]byte(payload))
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	metrics.CacheLookups.WithLabelValues("route_sqlite", "hit").Inc()
	return routes, true, nil
}

// Store routes under key for ttl.
func (s *SqliteRouteCache) Put(ctx context.Context, key string, routes []domain.Route, ttl time.Duration) error {
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
	INSERT OR REPLACE INTO route_cache (
        cache_key,
        routes_json,
        expires_at
    )
    VALUES (?, ?, ?);
	`, key, string(payload), s.now().Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}

// Delete expired rows. Returns the number of rows removed.
func (s *SqliteRouteCache) Purge(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("route cache: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM route_cache WHERE expires_at <= ?;`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge route cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge route cache: rows affected: %w", err)
	}
	return n, nil
}
