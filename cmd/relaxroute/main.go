package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"relaxed-route-service/internal/adapters/cache"
	"relaxed-route-service/internal/adapters/directions"
	"relaxed-route-service/internal/adapters/repositories"
	"relaxed-route-service/internal/config"
	"relaxed-route-service/internal/domain"
	"relaxed-route-service/internal/platform/db"
	"relaxed-route-service/internal/services"
)

// relaxroute asks for a trip on stdin and prints the least stressful route.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	maxIncrease := flag.Float64("max-increase", cfg.MaxDistanceIncrease, "allowed extra distance over the shortest route (0.15 = 15%)")
	banded := flag.Bool("banded", cfg.DistanceBanded, "scale the allowed detour with trip length")
	normalize := flag.Bool("normalize", cfg.NormalizeByDistance, "score stress as delay seconds per km")
	flag.Parse()

	if strings.TrimSpace(cfg.GoogleMapsAPIKey) == "" {
		log.Fatal("GOOGLE_MAPS_API_KEY is required")
	}

	opts := directions.Options{
		RouteCacheTTL:     cfg.RouteCacheTTL,
		RequestsPerSecond: cfg.DirectionsRPS,
	}

	// Only the local SQLite cache is used here; shared backends belong to the server.
	if cfg.CacheBackend == config.CacheSQLite {
		conn, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		if err := repositories.InitSchema(context.Background(), conn); err != nil {
			log.Fatal(err)
		}
		opts.RouteCache = cache.NewSqliteRouteCache(conn)
		opts.GeocodeCache = cache.NewSqliteGeocodeCache(conn)
	}

	provider, err := directions.NewGoogleDirectionsProvider(cfg.GoogleMapsAPIKey, opts)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	req, err := promptRequest(bufio.NewReader(os.Stdin), os.Stdout)
	if err != nil {
		log.Fatal(err)
	}

	req.TravelMode = cfg.TravelMode
	req.Stress = services.StressOptions{NormalizeByDistance: *normalize}
	req.Policy = services.FixedDetour(*maxIncrease)
	if *banded {
		req.Policy = services.BandedDetour()
	}

	res, err := services.FindRelaxedRoute(ctx, req, provider, provider)
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}

	printResult(os.Stdout, req, res)
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSpace(strings.TrimSuffix(label, ":")), err)
	}
	return strings.TrimSpace(line), nil
}

func promptRequest(in *bufio.Reader, out io.Writer) (services.RelaxedRouteRequest, error) {
	var req services.RelaxedRouteRequest

	origin, err := prompt(in, out, "Origin: ")
	if err != nil {
		return req, err
	}
	destination, err := prompt(in, out, "Destination: ")
	if err != nil {
		return req, err
	}
	if origin == "" || destination == "" {
		return req, errors.New("origin and destination are required")
	}
	req.Origin = origin
	req.Destination = destination

	fmt.Fprintln(out, "Mode: [1] normal  [2] manual waypoints  [3] auto waypoints")
	choice, err := prompt(in, out, "Choice [1]: ")
	if err != nil {
		return req, err
	}

	switch choice {
	case "", "1":
		req.Mode = services.ModeNormal
	case "2":
		req.Mode = services.ModeManual
		raw, err := prompt(in, out, "Waypoints (comma separated): ")
		if err != nil {
			return req, err
		}
		req.Waypoints = services.ParseWaypointsCSV(raw)
	case "3":
		req.Mode = services.ModeAuto
		req.Auto = services.DefaultAutoWaypointParams()
	default:
		return req, fmt.Errorf("unknown mode %q", choice)
	}

	return req, nil
}

func describeError(err error) string {
	var mre *domain.MalformedRouteDataError
	var ice *domain.InvalidConstraintError

	switch {
	case errors.Is(err, domain.ErrNoCandidateRoutes):
		return "No routes found between those places."
	case errors.Is(err, domain.ErrNoEligibleRoute):
		return "No route fits within the allowed detour."
	case errors.Is(err, domain.ErrInvalidDetourDistance):
		return "The distance-banded detour needs a shortest route longer than 0 m."
	case errors.As(err, &ice):
		return fmt.Sprintf("Invalid detour allowance: %v", ice.Fraction)
	case errors.As(err, &mre):
		return fmt.Sprintf("The provider returned unusable data for route %d: %v", mre.Index, mre)
	default:
		return fmt.Sprintf("Route lookup failed: %v", err)
	}
}

func printResult(out io.Writer, req services.RelaxedRouteRequest, res *services.RelaxedRoute) {
	chosen := res.Chosen()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Best route: %s\n", summaryOrDash(chosen.Route.Summary))
	printRoute(out, chosen)
	fmt.Fprintf(out, "  allowed up to %.2f km (shortest %.2f km)\n",
		res.MaxAllowedMeters/1000, res.Selection.BaselineDistanceMeters/1000)
	fmt.Fprintf(out, "  %d candidate routes from the provider\n", res.CandidateCount)
	if len(res.Waypoints) > 0 {
		fmt.Fprintf(out, "  via %s\n", strings.Join(res.Waypoints, " -> "))
	}

	if alts := res.Selection.Alternatives(); len(alts) > 0 {
		fmt.Fprintln(out, "\nOther eligible routes:")
		for _, alt := range alts {
			fmt.Fprintf(out, "- %s\n", summaryOrDash(alt.Route.Summary))
			printRoute(out, alt)
		}
	}

	fmt.Fprintf(out, "\nOpen in Google Maps:\n%s\n",
		directions.BuildShareableLink(req.Origin, req.Destination, res.Waypoints, req.TravelMode))
}

func printRoute(out io.Writer, sr domain.ScoredRoute) {
	fmt.Fprintf(out, "  %.2f km, %.1f min (%.1f min in traffic), stress %.2f\n",
		sr.Route.DistanceMeters/1000,
		sr.Route.DurationSeconds/60,
		sr.Route.DurationInTrafficSeconds/60,
		sr.Score.Stress,
	)
}

func summaryOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
