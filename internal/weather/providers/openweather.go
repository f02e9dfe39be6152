package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-sdk/internal/weather"
)

// DefaultOpenWeatherBaseURL is the public OpenWeatherMap API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org"

var errUnexpected = errors.New("unexpected status code")

// OpenWeatherProvider implements weather.Fetcher for OpenWeatherMap's current weather endpoint.
type OpenWeatherProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

var _ weather.Fetcher = (*OpenWeatherProvider)(nil)

// ProviderOption customizes an OpenWeatherProvider.
type ProviderOption func(*OpenWeatherProvider)

// WithBaseURL points the provider at another API root, e.g. a test server.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *OpenWeatherProvider) {
		if baseURL != "" {
			p.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithBackoff overrides the retry schedule.
func WithBackoff(b BackoffConfig) ProviderOption {
	return func(p *OpenWeatherProvider) {
		p.httpCfg.Backoff = b
	}
}

func NewOpenWeatherProvider(client *http.Client, logger zerolog.Logger, opts ...ProviderOption) *OpenWeatherProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	p := &OpenWeatherProvider{
		name:    "openweathermap",
		baseURL: DefaultOpenWeatherBaseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: cb,
		logger:  logger.With().Str("component", "OpenWeatherProvider").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// URL returns the request URL for city and apiKey.
func (p *OpenWeatherProvider) URL(city, apiKey string) string {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", apiKey)
	return fmt.Sprintf("%s/data/2.5/weather?%s", p.baseURL, values.Encode())
}

// Fetch returns the current weather for city using apiKey.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, apiKey, city string) (weather.Payload, error) {
	if apiKey == "" {
		return weather.Payload{}, weather.ErrInvalidCredential
	}

	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, p.URL(city, apiKey), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		if errors.Is(err, errRateLimited) {
			p.logger.Error().Str("location", city).Msg("too many requests, consider upgrading the subscription or reducing calls")
			return weather.Payload{}, fmt.Errorf("%w: %v", weather.ErrRateLimited, err)
		}
		p.logger.Error().Err(err).Str("location", city).Msg("error fetching weather data")
		return weather.Payload{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		p.logger.Error().Msg("unauthorized api request")
		return weather.Payload{}, weather.ErrInvalidCredential
	case resp.StatusCode == http.StatusNotFound:
		p.logger.Warn().Str("location", city).Msg("city not found")
		return weather.Payload{}, fmt.Errorf("%w: %s", weather.ErrLocationNotFound, city)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return weather.Payload{}, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
	}

	var payload struct {
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
		} `json:"main"`
		Visibility int `json:"visibility"`
		Wind       struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Dt  int64 `json:"dt"`
		Sys struct {
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"sys"`
		Timezone int    `json:"timezone"`
		Name     string `json:"name"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Payload{}, fmt.Errorf("decode openweather response: %w", err)
	}

	var summary weather.Summary
	if len(payload.Weather) > 0 {
		summary = weather.Summary{
			Main:        payload.Weather[0].Main,
			Description: payload.Weather[0].Description,
		}
	}

	return weather.Payload{
		Weather: summary,
		Temperature: weather.Temperature{
			Temp:      payload.Main.Temp,
			FeelsLike: payload.Main.FeelsLike,
		},
		Visibility: payload.Visibility,
		Wind:       weather.Wind{Speed: payload.Wind.Speed},
		Datetime:   payload.Dt,
		Sys: weather.Sun{
			Sunrise: payload.Sys.Sunrise,
			Sunset:  payload.Sys.Sunset,
		},
		Timezone: payload.Timezone,
		Name:     payload.Name,
	}, nil
}
