package sdk

import (
	"context"
	"fmt"

	"github.com/i474232898/weather-sdk/internal/scheduler"
	"github.com/i474232898/weather-sdk/internal/weather"
)

// Mode selects how a client keeps its cache up to date. It is fixed for the client's lifetime.
type Mode string

const (
	// ModeOnDemand fetches only when a requested location is missing or stale.
	ModeOnDemand Mode = "on_demand"
	// ModePolling refreshes every cached location in the background and serves
	// cached data without checking its age.
	ModePolling Mode = "polling"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeOnDemand, ModePolling:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// strategy is the mode specific half of a client.
type strategy interface {
	get(ctx context.Context, location string) (weather.Payload, error)
	stop()
}

type onDemand struct {
	svc *weather.Service
}

func (o onDemand) get(ctx context.Context, location string) (weather.Payload, error) {
	return o.svc.GetFresh(ctx, location)
}

func (onDemand) stop() {}

type polling struct {
	svc   *weather.Service
	sched *scheduler.Scheduler
}

func (p polling) get(ctx context.Context, location string) (weather.Payload, error) {
	return p.svc.GetCached(ctx, location)
}

func (p polling) stop() {
	p.sched.Stop()
}
