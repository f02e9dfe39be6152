package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var validate = validator.New()

type AppConfig struct {
	OpenWeatherAPIKey string `validate:"required"`

	// Mode is the cache update strategy: on_demand or polling.
	Mode string `validate:"oneof=on_demand polling"`

	// OpenWeatherBaseURL overrides the provider root, mostly for local testing.
	OpenWeatherBaseURL string `validate:"omitempty,url"`

	HTTPTimeout time.Duration `validate:"gt=0"`
	LogLevel    zerolog.Level

	Port string `validate:"required,numeric"`
}

// Load reads configuration from a .env file (if any) and the environment with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.Mode = strings.ToLower(getenvDefault("SDK_MODE", "on_demand"))
	cfg.OpenWeatherBaseURL = os.Getenv("OPENWEATHER_BASE_URL")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	level, err := zerolog.ParseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
