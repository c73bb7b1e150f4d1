package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/cafe-discovery/internal/cafe"
)

type AppConfig struct {
	// Outbound HTTP client timeout for all providers.
	HTTPTimeout time.Duration

	// DefaultRadiusMeters is used when a request does not specify a radius.
	DefaultRadiusMeters float64

	// GeocodeInterval is the minimum spacing between reverse geocoding
	// calls (Nominatim usage policy: one per second).
	GeocodeInterval time.Duration

	// Provider endpoints; empty means the public default.
	OverpassURL  string
	NominatimURL string
	OSRMURL      string

	// UserAgent identifies this service to Nominatim.
	UserAgent string

	// RefreshInterval controls how often watched locations are re-discovered.
	RefreshInterval time.Duration

	// WatchLocations are areas kept warm by the scheduler.
	WatchLocations []cafe.Coordinates

	// Snapshot cache retention.
	SnapshotMaxHistory int           // max snapshots per area (0 = unlimited)
	SnapshotMaxAge     time.Duration // staleness bound for reuse

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	httpTimeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	httpTimeout, err := time.ParseDuration(httpTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = httpTimeout

	cfg.DefaultRadiusMeters = float64(getenvInt("DEFAULT_RADIUS_M", 1000))

	geocodeIntervalStr := getenvDefault("GEOCODE_INTERVAL", "1s")
	geocodeInterval, err := time.ParseDuration(geocodeIntervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid GEOCODE_INTERVAL: %w", err)
	}
	cfg.GeocodeInterval = geocodeInterval

	cfg.OverpassURL = os.Getenv("OVERPASS_URL")
	cfg.NominatimURL = os.Getenv("NOMINATIM_URL")
	cfg.OSRMURL = os.Getenv("OSRM_URL")
	cfg.UserAgent = getenvDefault("GEOCODER_USER_AGENT", "CafeFinder/1.0")

	// Warm refresh: default 5 minutes, matching the snapshot staleness bound.
	refreshStr := getenvDefault("REFRESH_INTERVAL", "5m")
	refresh, err := time.ParseDuration(refreshStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = refresh

	cfg.SnapshotMaxHistory = getenvInt("SNAPSHOT_MAX_HISTORY", 12)

	maxAgeStr := getenvDefault("SNAPSHOT_MAX_AGE", "5m")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_MAX_AGE: %w", err)
	}
	cfg.SnapshotMaxAge = maxAge
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadWatchLocations()
	if err != nil {
		return nil, err
	}
	cfg.WatchLocations = locs

	return cfg, nil
}

// loadWatchLocations parses WATCH_LOCATIONS, a comma-separated list of
// "lat:lon" pairs. An empty variable disables the warm refresh job.
func loadWatchLocations() ([]cafe.Coordinates, error) {
	raw := strings.TrimSpace(os.Getenv("WATCH_LOCATIONS"))
	if raw == "" {
		return nil, nil
	}

	var locs []cafe.Coordinates
	for _, pair := range strings.Split(raw, ",") {
		latStr, lonStr, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("invalid WATCH_LOCATIONS entry %q; want lat:lon", pair)
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in WATCH_LOCATIONS entry %q", pair)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in WATCH_LOCATIONS entry %q", pair)
		}
		locs = append(locs, cafe.Coordinates{Lat: lat, Lng: lon})
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
