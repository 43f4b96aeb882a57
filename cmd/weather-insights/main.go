package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/i474232898/weather-insights/internal/api/http"
	"github.com/i474232898/weather-insights/internal/config"
	"github.com/i474232898/weather-insights/internal/scheduler"
	"github.com/i474232898/weather-insights/internal/store"
	"github.com/i474232898/weather-insights/internal/weather"
	"github.com/i474232898/weather-insights/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	snapshots, closeStore := openStore(ctx, cfg)
	defer closeStore()

	// Providers with resilience (backoff + circuit breaker).
	var provs []weather.Provider
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}

	// Open-Meteo needs no key but only takes coordinates.
	var geo providers.Geocoder = providers.NewOpenMeteoGeocoder(httpClient)
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	provs = append(provs, providers.NewOpenMeteoProvider(httpClient, providers.NewCachedGeocoder(geo)))

	log.Printf("INFO: %d weather providers configured", len(provs))

	// Core service orchestrating providers and store.
	service := weather.NewService(snapshots, provs, weather.WithCacheTTL(cfg.CacheTTL))

	// Scheduler that periodically fetches and stores data.
	sched := scheduler.New(cfg.Locations, scheduler.Config{
		Interval: cfg.FetchInterval,
		Cron:     cfg.FetchCron,
	}, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	if cfg.LocationsFile != "" {
		go func() {
			err := config.WatchLocations(ctx, cfg.LocationsFile, func(locs []weather.Location) {
				sched.SetLocations(config.MergeLocations(cfg.EnvLocations, locs))
			})
			if err != nil {
				log.Printf("ERROR: locations watcher stopped: %v", err)
			}
		}()
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-insights",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
	}))

	// API routes.
	httpapi.RegisterRoutes(app, service, httpapi.Options{
		InsightWindow: cfg.InsightWindow,
		InsightLimit:  cfg.InsightLimit,
		Stats:         sched.Stats,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// openStore connects to Postgres when DATABASE_URL is set, falling back to the
// in-memory store when the database cannot be reached.
func openStore(ctx context.Context, cfg *config.AppConfig) (weather.Store, func()) {
	memory := func() (weather.Store, func()) {
		log.Printf("INFO: using in-memory store (max %d snapshots, max age %s)", cfg.StoreMaxHistory, cfg.StoreMaxAge)
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), func() {}
	}
	if cfg.DatabaseURL == "" {
		return memory()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("ERROR: invalid DATABASE_URL: %v", err)
		return memory()
	}

	pg := store.NewPostgresStore(pool)
	if err := pg.Health(connectCtx); err != nil {
		log.Printf("ERROR: %v", err)
		pool.Close()
		return memory()
	}
	if err := pg.Migrate(connectCtx); err != nil {
		log.Printf("ERROR: %v", err)
		pool.Close()
		return memory()
	}

	log.Println("INFO: using postgres store")
	return pg, pool.Close
}
