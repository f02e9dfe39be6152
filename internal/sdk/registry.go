package sdk

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-sdk/internal/scheduler"
	"github.com/i474232898/weather-sdk/internal/store"
	"github.com/i474232898/weather-sdk/internal/weather"
)

var validate = validator.New()

// Option customizes a Registry.
type Option func(*Registry)

// WithClock replaces time.Now for freshness decisions and fetch timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// Registry hands out at most one live Client per api key.
// Keep a single long-lived Registry per process and pass it where clients are built.
type Registry struct {
	fetcher weather.Fetcher
	base    zerolog.Logger
	logger  zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry creates an empty Registry whose clients fetch through fetcher.
func NewRegistry(fetcher weather.Fetcher, logger zerolog.Logger, opts ...Option) *Registry {
	r := &Registry{
		fetcher: fetcher,
		base:    logger,
		logger:  logger.With().Str("component", "Registry").Logger(),
		now:     time.Now,
		clients: make(map[string]*Client),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// acquireRequest holds the arguments of Acquire for validation.
type acquireRequest struct {
	Credential string `validate:"required"`
	Mode       Mode   `validate:"oneof=on_demand polling"`
}

func (req acquireRequest) check() error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Field() {
			case "Credential":
				return ErrEmptyCredential
			case "Mode":
				return fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
			}
		}
	}
	return err
}

// Acquire builds a client for credential with an empty cache. In polling mode
// the background refresh starts immediately. It fails with ErrDuplicateCredential
// while another client for the same credential is live.
func (r *Registry) Acquire(credential string, mode Mode) (*Client, error) {
	req := acquireRequest{Credential: credential, Mode: mode}
	if err := req.check(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[credential]; exists {
		return nil, ErrDuplicateCredential
	}

	c, err := r.newClient(credential, mode)
	if err != nil {
		return nil, err
	}
	r.clients[credential] = c

	c.logger.Info().Msg("client created")
	return c, nil
}

func (r *Registry) newClient(credential string, mode Mode) (*Client, error) {
	lru, err := store.NewLRUStore(store.DefaultCapacity)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	scoped := r.base.With().
		Str("client_id", id).
		Str("mode", string(mode)).
		Logger()
	svc := weather.NewService(lru, r.fetcher, credential, r.now, scoped)

	c := &Client{
		id:         id,
		credential: credential,
		mode:       mode,
		store:      lru,
		svc:        svc,
		registry:   r,
		logger:     scoped.With().Str("component", "Client").Logger(),
	}

	switch mode {
	case ModePolling:
		sched := scheduler.New(weather.FreshnessThreshold, svc, scoped)
		if err := sched.Start(); err != nil {
			return nil, fmt.Errorf("start polling: %w", err)
		}
		c.strategy = polling{svc: svc, sched: sched}
	default:
		c.strategy = onDemand{svc: svc}
	}
	return c, nil
}

// Lookup returns the live client for credential, if any.
func (r *Registry) Lookup(credential string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[credential]
	return c, ok
}

// Len returns the number of live clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close releases every live client.
func (r *Registry) Close() {
	r.mu.Lock()
	live := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		live = append(live, c)
	}
	r.mu.Unlock()

	for _, c := range live {
		c.Release()
	}
}

// remove drops c from the registry if it is still the live client for its credential.
func (r *Registry) remove(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clients[c.credential] == c {
		delete(r.clients, c.credential)
	}
}
