package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"relaxed-route-service/internal/adapters/cache"
	"relaxed-route-service/internal/adapters/directions"
	"relaxed-route-service/internal/adapters/repositories"
	"relaxed-route-service/internal/api"
	"relaxed-route-service/internal/api/handlers"
	"relaxed-route-service/internal/config"
	"relaxed-route-service/internal/platform/db"
)

// main is the application composition root.
// It wires concrete adapters (cache backend, Google Maps) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if strings.TrimSpace(cfg.GoogleMapsAPIKey) == "" {
		log.Fatal("GOOGLE_MAPS_API_KEY is required")
	}

	opts, closeCaches, err := cacheOptions(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCaches()

	opts.RouteCacheTTL = cfg.RouteCacheTTL
	opts.RequestsPerSecond = cfg.DirectionsRPS

	provider, err := directions.NewGoogleDirectionsProvider(cfg.GoogleMapsAPIKey, opts)
	if err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(provider, provider, handlers.RouteDefaults{
		MaxDistanceIncrease: cfg.MaxDistanceIncrease,
		DistanceBanded:      cfg.DistanceBanded,
		NormalizeByDistance: cfg.NormalizeByDistance,
		TravelMode:          cfg.TravelMode,
	})

	// Timeouts are tuned for auto waypoint searches (many sequential Directions calls).
	log.Printf("Server listening addr=:%s cache=%s", cfg.Port, cfg.CacheBackend)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// cacheOptions builds the route and geocode caches for the configured backend.
// The returned func releases the backing connection.
func cacheOptions(cfg config.Config) (directions.Options, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.CacheBackend {
	case config.CacheSQLite:
		conn, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return directions.Options{}, nil, err
		}
		if err := repositories.InitSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return directions.Options{}, nil, err
		}

		routes := cache.NewSqliteRouteCache(conn)
		if n, err := routes.Purge(ctx); err != nil {
			log.Printf("route cache purge failed: %v", err)
		} else if n > 0 {
			log.Printf("route cache purged expired=%d", n)
		}

		return directions.Options{
			RouteCache:   routes,
			GeocodeCache: cache.NewSqliteGeocodeCache(conn),
		}, closer(conn), nil

	case config.CachePostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return directions.Options{}, nil, err
		}
		if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return directions.Options{}, nil, err
		}

		return directions.Options{
			RouteCache:   cache.NewSQLRouteCache(conn),
			GeocodeCache: cache.NewSQLGeocodeCache(conn),
		}, closer(conn), nil

	case config.CacheRedis:
		rdb, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return directions.Options{}, nil, err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return directions.Options{}, nil, fmt.Errorf("redis ping: %w", err)
		}

		return directions.Options{
			RouteCache:   cache.NewRedisRouteCache(rdb),
			GeocodeCache: cache.NewRedisGeocodeCache(rdb),
		}, func() { _ = rdb.Close() }, nil

	default:
		log.Println("Caching disabled: every query hits the Google Maps API")
		return directions.Options{}, func() {}, nil
	}
}

func closer(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			log.Printf("close database: %v", err)
		}
	}
}
