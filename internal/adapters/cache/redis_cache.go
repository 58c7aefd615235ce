package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"relaxed-route-service/internal/domain"
	"relaxed-route-service/internal/platform/metrics"
	"relaxed-route-service/internal/platform/obs"
)

const (
	redisRoutePrefix = "routes:"
	redisGeocodeHash = "geocode"
	redisLatLngSep   = ","
)

// NewRedisClient builds a client from a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis cache: parse url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// RedisRouteCache stores route sets as JSON strings with a Redis expiry.
type RedisRouteCache struct {
	rdb *redis.Client
}

func NewRedisRouteCache(rdb *redis.Client) *RedisRouteCache {
	return &RedisRouteCache{rdb: rdb}
}

// Fetch the cached routes for key. Expiry is enforced by Redis.
func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ []domain.Route, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.redis.Get")(&err)

	if c.rdb == nil {
		return nil, false, errors.New("route cache: redis client is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get route cache: key must not be empty")
	}

	b, err := c.rdb.Get(ctx, redisRoutePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("route_redis", "miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: redis get: %w", err)
	}

	routes, err := decodeRoutes(b)
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	metrics.CacheLookups.WithLabelValues("route_redis", "hit").Inc()
	return routes, true, nil
}

// Store routes under key for ttl.
func (c *RedisRouteCache) Put(ctx context.Context, key string, routes []domain.Route, ttl time.Duration) error {
	if c.rdb == nil {
		return errors.New("route cache: redis client is nil")
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

	if err := c.rdb.Set(ctx, redisRoutePrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}
	return nil
}

// RedisGeocodeCache keeps address -> "lat,lng" in a single Redis hash.
type RedisGeocodeCache struct {
	rdb *redis.Client
}

func NewRedisGeocodeCache(rdb *redis.Client) *RedisGeocodeCache {
	return &RedisGeocodeCache{rdb: rdb}
}

// Fetch cached coordinates for the given addresses.
func (c *RedisGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.redis.GetMany")(&err)

	if c.rdb == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	vals, err := c.rdb.HMGet(ctx, redisGeocodeHash, uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: redis hmget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}

		coord, err := parseLatLng(s)
		if err != nil {
			return nil, fmt.Errorf("get geocode cache: address=%q: %w", uniq[i], err)
		}
		out[uniq[i]] = coord
	}

	return out, nil
}

// Store address -> coordinate mappings in the cache.
func (c *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if c.rdb == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	fields := make(map[string]any, len(results))
	for addr, coord := range results {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}
		fields[addr] = formatLatLng(coord)
	}

	if err := c.rdb.HSet(ctx, redisGeocodeHash, fields).Err(); err != nil {
		return fmt.Errorf("insert geocode cache: redis hset: %w", err)
	}
	return nil
}

func formatLatLng(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + redisLatLngSep + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

func parseLatLng(s string) (domain.Coordinates, error) {
	latS, lngS, ok := strings.Cut(s, redisLatLngSep)
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("invalid cached coordinate %q", s)
	}

	lat, err := strconv.ParseFloat(latS, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid cached latitude %q: %w", latS, err)
	}
	lng, err := strconv.ParseFloat(lngS, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid cached longitude %q: %w", lngS, err)
	}

	return domain.Coordinates{Lat: lat, Lng: lng}, nil
}
