package weather

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/weather-sdk/internal/common"
)

// refreshTimeout bounds a single fetch during a background refresh cycle.
const refreshTimeout = 30 * time.Second

// Service orchestrates the fetcher and the bounded store for one credential.
type Service struct {
	store      Store
	fetcher    Fetcher
	credential string
	now        func() time.Time
	logger     zerolog.Logger
}

// NewService creates a new Service. A nil now falls back to time.Now.
func NewService(store Store, fetcher Fetcher, credential string, now func() time.Time, logger zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:      store,
		fetcher:    fetcher,
		credential: credential,
		now:        now,
		logger:     logger.With().Str("component", "WeatherService").Logger(),
	}
}

// NormalizeKey turns a caller supplied location name into a store key.
func NormalizeKey(location string) (string, error) {
	key := common.NormalizeLocation(location)
	if key == "" {
		return "", ErrInvalidLocation
	}
	return key, nil
}

// GetFresh returns a cached payload younger than FreshnessThreshold, otherwise
// fetches, stores and returns a new one. A failed fetch leaves any stale entry in place.
func (s *Service) GetFresh(ctx context.Context, location string) (Payload, error) {
	key, err := NormalizeKey(location)
	if err != nil {
		return Payload{}, err
	}

	if entry, ok := s.store.Get(key); ok && IsFresh(entry.FetchedAt, s.now()) {
		s.logger.Debug().Str("location", key).Msg("serving cached weather")
		return entry.Payload, nil
	}

	return s.FetchAndStore(ctx, key)
}

// GetCached returns whatever is cached for location regardless of age. Only a
// location that was never cached is fetched synchronously.
func (s *Service) GetCached(ctx context.Context, location string) (Payload, error) {
	key, err := NormalizeKey(location)
	if err != nil {
		return Payload{}, err
	}

	if entry, ok := s.store.Get(key); ok {
		return entry.Payload, nil
	}

	return s.FetchAndStore(ctx, key)
}

// FetchAndStore fetches the payload for an already normalized key and puts it in the store.
// The fetch runs without holding the store lock.
func (s *Service) FetchAndStore(ctx context.Context, key string) (Payload, error) {
	payload, err := s.fetcher.Fetch(ctx, s.credential, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("location", key).Msg("weather fetch failed")
		return Payload{}, &FetchError{Location: key, Err: err}
	}

	s.store.Put(key, payload, s.now())
	s.logger.Info().Str("location", key).Msg("retrieved weather data")
	return payload, nil
}

// RefreshReport summarizes one background refresh cycle.
type RefreshReport struct {
	Attempted int
	Refreshed int
	Failed    int
}

// RefreshAll re-fetches every currently cached location concurrently.
// Failures are logged and never abort the rest of the cycle.
func (s *Service) RefreshAll(ctx context.Context) RefreshReport {
	keys := s.store.Keys()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		report = RefreshReport{Attempted: len(keys)}
	)

	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
			defer cancel()

			payload, err := s.fetcher.Fetch(fetchCtx, s.credential, key)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				// Keep the last good payload.
				s.logger.Error().Err(err).Str("location", key).Msg("refresh failed; keeping cached weather")
				report.Failed++
				return
			}
			if ctx.Err() != nil {
				return
			}
			if !s.store.Replace(key, payload, s.now()) {
				s.logger.Debug().Str("location", key).Msg("location evicted during refresh; dropping result")
				return
			}
			report.Refreshed++
		}(key)
	}

	wg.Wait()
	return report
}

// Locations returns the cached location keys, most recently used first.
func (s *Service) Locations() []string {
	return s.store.Keys()
}
