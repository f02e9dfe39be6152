package sdk

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/i474232898/weather-sdk/internal/weather"
)

// Client is a cache-backed weather accessor bound to one api key.
// Obtain one from Registry.Acquire and give it back with Release.
type Client struct {
	id         string
	credential string
	mode       Mode

	store    weather.Store
	svc      *weather.Service
	strategy strategy
	registry *Registry
	logger   zerolog.Logger

	released atomic.Bool
}

// ID returns the random identifier used for this client in logs.
func (c *Client) ID() string {
	return c.id
}

// Mode returns the update mode chosen at construction.
func (c *Client) Mode() Mode {
	return c.mode
}

// GetWeather returns the current weather for location, served from the cache
// according to the client's mode.
func (c *Client) GetWeather(ctx context.Context, location string) (weather.Payload, error) {
	if c.released.Load() {
		return weather.Payload{}, ErrReleased
	}
	return c.strategy.get(ctx, location)
}

// Locations returns the cached location keys, most recently used first.
func (c *Client) Locations() []string {
	if c.released.Load() {
		return nil
	}
	return c.svc.Locations()
}

// Release stops background refreshing, drops the cache and frees the api key
// for a new client. Releasing twice is a no-op.
func (c *Client) Release() {
	if !c.released.CompareAndSwap(false, true) {
		return
	}

	c.strategy.stop()
	for _, key := range c.store.Keys() {
		c.store.Remove(key)
	}
	c.registry.remove(c)

	c.logger.Info().Msg("client released")
}
