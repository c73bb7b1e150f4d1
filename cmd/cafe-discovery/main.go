package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/time/rate"

	httpapi "github.com/i474232898/cafe-discovery/internal/api/http"
	"github.com/i474232898/cafe-discovery/internal/cafe"
	"github.com/i474232898/cafe-discovery/internal/cafe/providers"
	"github.com/i474232898/cafe-discovery/internal/config"
	"github.com/i474232898/cafe-discovery/internal/scheduler"
	"github.com/i474232898/cafe-discovery/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory snapshot cache with configured retention.
	memStore := store.NewMemoryStore(cfg.SnapshotMaxHistory, cfg.SnapshotMaxAge)

	// Providers with resilience (backoff + circuit breaker).
	source := providers.NewOverpassProvider(httpClient, cfg.OverpassURL)
	geocoder := providers.NewNominatimGeocoder(httpClient, cfg.NominatimURL, cfg.UserAgent)
	router := providers.NewOSRMRouter(httpClient, cfg.OSRMURL)

	// One process-wide gate for the geocoder: concurrent discoveries must
	// share the one-call-per-second ceiling.
	geocodeGate := rate.NewLimiter(rate.Every(cfg.GeocodeInterval), 1)
	resolver := cafe.NewResolver(geocoder, geocodeGate)

	// Core service orchestrating the discovery pipeline.
	service := cafe.NewService(source, resolver, memStore, cfg.SnapshotMaxAge)

	// Scheduler that keeps watched locations warm.
	sched := scheduler.New(cfg.WatchLocations, cfg.DefaultRadiusMeters, cfg.RefreshInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "cafe-discovery",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cafe-discovery",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, router, cfg.DefaultRadiusMeters)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
