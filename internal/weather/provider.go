package weather

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredential is returned when the provider rejects the API key.
	ErrInvalidCredential = errors.New("invalid api key")
	// ErrLocationNotFound is returned when the provider does not know the location.
	ErrLocationNotFound = errors.New("location not found")
	// ErrRateLimited is returned when the provider keeps throttling after retries.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidLocation is returned for an empty location name.
	ErrInvalidLocation = errors.New("location must not be empty")
)

// FetchError reports a failed fetch for a location that had no usable cached value.
type FetchError struct {
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch weather for %q: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher abstracts the remote weather source (e.g. OpenWeatherMap).
type Fetcher interface {
	Fetch(ctx context.Context, credential, location string) (Payload, error)
}

// Store is the contract the bounded cache must satisfy.
type Store interface {
	Get(key string) (Entry, bool)
	Put(key string, payload Payload, now time.Time) Entry
	Replace(key string, payload Payload, now time.Time) bool
	Remove(key string)
	Keys() []string
	Len() int
}
