package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheNone     = "none"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

// Config holds process settings. Values come from the environment, with an
// optional YAML file (CONFIG_FILE) filling in anything the environment leaves unset.
type Config struct {
	GoogleMapsAPIKey string `yaml:"google_maps_api_key"`
	Port             string `yaml:"port"`

	CacheBackend  string        `yaml:"cache_backend"`
	DBPath        string        `yaml:"db_path"`
	DatabaseURL   string        `yaml:"database_url"`
	RedisURL      string        `yaml:"redis_url"`
	RouteCacheTTL time.Duration `yaml:"route_cache_ttl"`

	MaxDistanceIncrease float64 `yaml:"max_distance_increase"`
	DistanceBanded      bool    `yaml:"distance_banded"`
	NormalizeByDistance bool    `yaml:"normalize_by_distance"`
	TravelMode          string  `yaml:"travel_mode"`
	DirectionsRPS       float64 `yaml:"directions_rps"`
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaults() Config {
	return Config{
		Port:                "8080",
		CacheBackend:        CacheSQLite,
		DBPath:              "data/app.db",
		RouteCacheTTL:       2 * time.Minute,
		MaxDistanceIncrease: 0.15,
		TravelMode:          "bicycling",
		DirectionsRPS:       10,
	}
}

// Load builds a Config from defaults, the optional YAML file named by
// CONFIG_FILE and the environment, in increasing precedence.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.GoogleMapsAPIKey = Get("GOOGLE_MAPS_API_KEY", cfg.GoogleMapsAPIKey)
	cfg.Port = Get("PORT", cfg.Port)
	cfg.CacheBackend = strings.ToLower(Get("CACHE_BACKEND", cfg.CacheBackend))
	cfg.DBPath = Get("DB_PATH", cfg.DBPath)
	cfg.DatabaseURL = Get("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = Get("REDIS_URL", cfg.RedisURL)
	cfg.TravelMode = Get("TRAVEL_MODE", cfg.TravelMode)

	var err error
	if cfg.RouteCacheTTL, err = durationEnv("ROUTE_CACHE_TTL", cfg.RouteCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.MaxDistanceIncrease, err = floatEnv("MAX_DISTANCE_INCREASE", cfg.MaxDistanceIncrease); err != nil {
		return Config{}, err
	}
	if cfg.DirectionsRPS, err = floatEnv("DIRECTIONS_RPS", cfg.DirectionsRPS); err != nil {
		return Config{}, err
	}
	if cfg.DistanceBanded, err = boolEnv("DISTANCE_BANDED", cfg.DistanceBanded); err != nil {
		return Config{}, err
	}
	if cfg.NormalizeByDistance, err = boolEnv("NORMALIZE_BY_DISTANCE", cfg.NormalizeByDistance); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.CacheBackend {
	case CacheNone, CacheSQLite, CachePostgres, CacheRedis:
	default:
		return fmt.Errorf("config: unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.CacheBackend == CachePostgres && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("config: DATABASE_URL is required for the postgres cache backend")
	}
	if c.CacheBackend == CacheRedis && strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("config: REDIS_URL is required for the redis cache backend")
	}
	if !isFinite(c.MaxDistanceIncrease) || c.MaxDistanceIncrease < 0 {
		return fmt.Errorf("config: MAX_DISTANCE_INCREASE must be finite and >= 0, got %v", c.MaxDistanceIncrease)
	}
	if !isFinite(c.DirectionsRPS) || c.DirectionsRPS <= 0 {
		return fmt.Errorf("config: DIRECTIONS_RPS must be positive, got %v", c.DirectionsRPS)
	}

	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	return nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
