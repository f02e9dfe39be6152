package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/weather-sdk/internal/api/http"
	"github.com/i474232898/weather-sdk/internal/common"
	"github.com/i474232898/weather-sdk/internal/config"
	"github.com/i474232898/weather-sdk/internal/sdk"
	"github.com/i474232898/weather-sdk/internal/weather/providers"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log = log.Level(cfg.LogLevel)

	mode, err := sdk.ParseMode(cfg.Mode)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid mode")
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// OpenWeatherMap transport with backoff and circuit breaker.
	provider := providers.NewOpenWeatherProvider(httpClient, log, providers.WithBaseURL(cfg.OpenWeatherBaseURL))

	// One registry per process; one client per api key.
	registry := sdk.NewRegistry(provider, log)
	defer registry.Close()

	client, err := registry.Acquire(cfg.OpenWeatherAPIKey, mode)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create weather client")
	}
	log.Info().
		Str("api_key", common.MaskSecret(cfg.OpenWeatherAPIKey)).
		Str("mode", string(mode)).
		Str("client_id", client.ID()).
		Msg("initialized OpenWeatherMap client")

	app := fiber.New(fiber.Config{
		AppName:               "weather-sdk",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-sdk",
			"mode":    client.Mode(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, client)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
