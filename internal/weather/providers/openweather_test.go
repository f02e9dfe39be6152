package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-sdk/internal/weather"
)

const vilniusResponse = `{
  "coord": {"lon": 25.2798, "lat": 54.6892},
  "weather": [{"id": 804, "main": "Clouds", "description": "overcast clouds", "icon": "04n"}],
  "main": {"temp": 271.15, "feels_like": 267.4, "pressure": 1021, "humidity": 86},
  "visibility": 10000,
  "wind": {"speed": 4.12, "deg": 250},
  "dt": 1710005627,
  "sys": {"country": "LT", "sunrise": 1709961904, "sunset": 1710002580},
  "timezone": 7200,
  "name": "Vilnius",
  "cod": 200
}`

var fastBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*OpenWeatherProvider, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	p := NewOpenWeatherProvider(srv.Client(), zerolog.Nop(), WithBaseURL(srv.URL), WithBackoff(fastBackoff))
	return p, &hits
}

func TestOpenWeatherProvider_Fetch(t *testing.T) {
	p, hits := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "vilnius", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(vilniusResponse))
	})

	got, err := p.Fetch(context.Background(), "secret", "vilnius")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	assert.Equal(t, weather.Payload{
		Weather:     weather.Summary{Main: "Clouds", Description: "overcast clouds"},
		Temperature: weather.Temperature{Temp: 271.15, FeelsLike: 267.4},
		Visibility:  10000,
		Wind:        weather.Wind{Speed: 4.12},
		Datetime:    1710005627,
		Sys:         weather.Sun{Sunrise: 1709961904, Sunset: 1710002580},
		Timezone:    7200,
		Name:        "Vilnius",
	}, got)
}

func TestOpenWeatherProvider_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantErr  error
		wantHits int32
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: weather.ErrInvalidCredential, wantHits: 1},
		{name: "not found", status: http.StatusNotFound, wantErr: weather.ErrLocationNotFound, wantHits: 1},
		{name: "bad request", status: http.StatusBadRequest, wantErr: errUnexpected, wantHits: 1},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: weather.ErrRateLimited, wantHits: 3},
		{name: "server error", status: http.StatusBadGateway, wantErr: errServerError, wantHits: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, hits := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := p.Fetch(context.Background(), "key", "london")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantHits, hits.Load())
		})
	}
}

func TestOpenWeatherProvider_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(vilniusResponse))
	})

	got, err := p.Fetch(context.Background(), "key", "vilnius")
	require.NoError(t, err)
	assert.Equal(t, "Vilnius", got.Name)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenWeatherProvider_EmptyKey(t *testing.T) {
	p, hits := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := p.Fetch(context.Background(), "", "vilnius")
	assert.ErrorIs(t, err, weather.ErrInvalidCredential)
	assert.Equal(t, int32(0), hits.Load())
}

func TestOpenWeatherProvider_MalformedBody(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("corrupted_test_data"))
	})

	_, err := p.Fetch(context.Background(), "key", "vilnius")
	assert.ErrorContains(t, err, "decode openweather response")
}

func TestOpenWeatherProvider_URL(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, zerolog.Nop())
	assert.Equal(t,
		"https://api.openweathermap.org/data/2.5/weather?appid=abc&q=rio+de+janeiro",
		p.URL("rio de janeiro", "abc"))
}

func TestDoRequestWithResilience_Config(t *testing.T) {
	_, err := doRequestWithResilience(context.Background(), HTTPClientConfig{}, nil, nil)
	assert.ErrorIs(t, err, errNoHTTPClient)

	_, err = doRequestWithResilience(context.Background(), HTTPClientConfig{Client: http.DefaultClient}, nil, nil)
	assert.ErrorIs(t, err, errInvalidConfig)
}
