package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Cycler runs one refresh cycle. *Refresher implements it.
type Cycler interface {
	RefreshAll(ctx context.Context) (*Report, error)
}

// Scheduler runs refresh cycles on a fixed interval.
type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	runFirst bool
	logger   *slog.Logger

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithImmediateRun runs a cycle as soon as the scheduler starts instead of
// waiting for the first tick.
func WithImmediateRun(enabled bool) SchedulerOption {
	return func(s *Scheduler) {
		s.runFirst = enabled
	}
}

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a scheduler that calls cycler every interval.
func NewScheduler(cycler Cycler, interval time.Duration, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		cycler:   cycler,
		interval: interval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "scheduler")
	return s
}

// Start begins ticking in the background. Calling Start on a running
// scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cycler == nil {
		return ErrCyclerRequired
	}
	if s.interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.loop(ctx, s.stop, s.stopped)
	return nil
}

// Stop halts the ticker and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop, stopped := s.stop, s.stopped
	s.stop, s.stopped = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-stopped
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Scheduler) loop(ctx context.Context, stop, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.runFirst {
		s.tick(ctx)
	}
	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	report, err := s.cycler.RefreshAll(ctx)
	switch {
	case errors.Is(err, ErrCycleRunning):
		s.logger.Info("skipping tick, refresh already running")
	case err != nil:
		s.logger.Warn("scheduled refresh ended early", "error", err)
	default:
		s.logger.Debug("scheduled refresh done", "added", report.Added(), "failed", report.Failed())
	}
}
