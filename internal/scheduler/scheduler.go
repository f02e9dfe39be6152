package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-sdk/internal/weather"
)

// ErrStopped is returned when starting a scheduler that was already stopped.
var ErrStopped = errors.New("scheduler stopped")

// Refresher is the work run on every tick.
type Refresher interface {
	RefreshAll(ctx context.Context) weather.RefreshReport
}

// Scheduler periodically refreshes every cached location of one client.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running sync.WaitGroup
	started bool
	stopped bool
}

// New creates a new Scheduler. A non-positive interval falls back to weather.FreshnessThreshold.
func New(interval time.Duration, refresher Refresher, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = weather.FreshnessThreshold
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
		logger:    logger.With().Str("component", "Scheduler").Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the periodic refresh job and starts the underlying scheduler.
// The first run happens one interval after Start.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.runCycle)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.started = true
	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")
	return nil
}

// runCycle performs one refresh of all cached locations unless the scheduler is stopping.
func (s *Scheduler) runCycle() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()

	s.logger.Debug().Msg("running weather refresh job")
	report := s.refresher.RefreshAll(s.ctx)
	s.logger.Info().
		Int("attempted", report.Attempted).
		Int("refreshed", report.Refreshed).
		Int("failed", report.Failed).
		Msg("completed weather refresh job")
}

// Stop cancels in-flight fetches, stops future runs and waits for the current
// cycle to return. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.running.Wait()
	s.logger.Info().Msg("scheduler stopped")
}
