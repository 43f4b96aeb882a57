package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/i474232898/weather-insights/internal/weather"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// DatabaseURL selects the Postgres store; empty keeps history in memory.
	DatabaseURL string

	// FetchInterval controls how often we fetch data for each location.
	// FetchCron, when set, replaces it with a standard 5-field cron schedule.
	FetchInterval time.Duration
	FetchCron     string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// Locations to track. LocationsFile, when set, is merged in and watched;
	// EnvLocations keeps the part that came from the environment.
	Locations     []weather.Location
	EnvLocations  []weather.Location
	LocationsFile string

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// CacheTTL is how long a live snapshot is reused by the current endpoint.
	CacheTTL time.Duration

	// Defaults for temperature insight queries.
	InsightWindow time.Duration
	InsightLimit  int

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	var err error

	// Scheduler interval: default 15 minutes.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	cfg.FetchCron = strings.TrimSpace(os.Getenv("FETCH_CRON"))
	if cfg.FetchCron != "" {
		if _, err := cron.ParseStandard(cfg.FetchCron); err != nil {
			return nil, fmt.Errorf("invalid FETCH_CRON: %w", err)
		}
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.CacheTTL, err = getenvDuration("CURRENT_CACHE_TTL", weather.DefaultCacheTTL); err != nil {
		return nil, err
	}
	if cfg.InsightWindow, err = getenvDuration("INSIGHT_WINDOW", weather.DefaultInsightWindow); err != nil {
		return nil, err
	}
	// Zero selects the INSIGHT_WINDOW instead of a fixed number of readings.
	cfg.InsightLimit = getenvInt("INSIGHT_LIMIT", 10)
	if cfg.InsightLimit != 0 && cfg.InsightLimit < 2 {
		return nil, fmt.Errorf("invalid INSIGHT_LIMIT: at least 2 readings are needed, got %d", cfg.InsightLimit)
	}

	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadPrimaryLocation()
	if err != nil {
		return nil, err
	}

	cfg.EnvLocations = locs
	cfg.LocationsFile = os.Getenv("LOCATIONS_FILE")
	if cfg.LocationsFile != "" {
		fileLocs, err := LoadLocations(cfg.LocationsFile)
		if err != nil {
			return nil, err
		}
		locs = MergeLocations(locs, fileLocs)
	}
	cfg.Locations = locs

	return cfg, nil
}

func loadPrimaryLocation() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")
	if strings.TrimSpace(city) == "" && strings.TrimSpace(country) == "" {
		return nil, nil
	}

	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		loc := weather.Location{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		}
		if loc.City == "" || loc.Country == "" {
			return nil, fmt.Errorf("location %d: city and country are required", i+1)
		}
		locs = append(locs, loc)
	}

	return locs, nil
}

// MergeLocations concatenates location lists, dropping later duplicates.
func MergeLocations(lists ...[]weather.Location) []weather.Location {
	seen := make(map[string]bool)
	var out []weather.Location
	for _, list := range lists {
		for _, loc := range list {
			if seen[loc.Key()] {
				continue
			}
			seen[loc.Key()] = true
			out = append(out, loc)
		}
	}
	return out
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
		log.Printf("INFO: ignoring invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
