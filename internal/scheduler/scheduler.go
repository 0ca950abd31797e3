// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of scheduled work. Failures are logged only.
type Job func(ctx context.Context) error

// Scheduler manages cron jobs. Jobs of the same entry never overlap.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	log     zerolog.Logger
	timeout time.Duration
}

// New creates a Scheduler. Each run gets a context derived from ctx and
// bounded by timeout when it is positive.
func New(ctx context.Context, log zerolog.Logger, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DiscardLogger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
		timeout: timeout,
	}
}

// Add registers job under spec, a standard five-field expression or a
// descriptor such as "@every 6h".
func (s *Scheduler) Add(spec, name string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	s.log.Debug().Str("job", name).Str("spec", spec).Msg("job registered")
	return nil
}

// RunNow executes job once on the calling goroutine.
func (s *Scheduler) RunNow(name string, job Job) { s.run(name, job) }

func (s *Scheduler) run(name string, job Job) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error().Err(err).Str("job", name).Dur("took", time.Since(start)).Msg("job failed")
		return
	}
	s.log.Info().Str("job", name).Dur("took", time.Since(start)).Msg("job done")
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", s.Len()).Msg("scheduler started")
}

// Stop cancels running jobs and waits for them to return or ctx to be done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		s.log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
