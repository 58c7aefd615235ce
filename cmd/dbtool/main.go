package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"relaxed-route-service/internal/adapters/cache"
	"relaxed-route-service/internal/adapters/repositories"
	"relaxed-route-service/internal/config"
	"relaxed-route-service/internal/platform/db"
)

// dbtool prepares the cache schema ahead of deployment and clears stale rows.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	backend := flag.String("backend", config.Get("CACHE_BACKEND", config.CacheSQLite), "cache backend: sqlite or postgres")
	purge := flag.Bool("purge", false, "delete expired route cache rows (sqlite only)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch strings.ToLower(*backend) {
	case config.CachePostgres:
		databaseURL := config.Get("DATABASE_URL", "")
		if strings.TrimSpace(databaseURL) == "" {
			log.Fatal("DATABASE_URL is required")
		}

		conn, err := db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		log.Println("Initializing postgres cache schema...")
		if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		log.Println("Schema ready.")

	case config.CacheSQLite:
		conn, err := db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		log.Println("Initializing sqlite cache schema...")
		if err := repositories.InitSchema(ctx, conn); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		log.Println("Schema ready.")

		if *purge {
			n, err := cache.NewSqliteRouteCache(conn).Purge(ctx)
			if err != nil {
				log.Fatalf("purge failed: %v", err)
			}
			log.Printf("Purged expired route cache rows=%d", n)
		}

	default:
		log.Fatalf("unsupported backend %q (want sqlite or postgres)", *backend)
	}
}
