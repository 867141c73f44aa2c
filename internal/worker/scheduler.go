package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs named jobs on cron specs such as "@daily" or "0 6 1 * *".
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	options
}

// NewScheduler creates a scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(opts ...Option) *Scheduler {
	o := newOptions(opts)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:     context.Background(),
		options: o,
	}
}

// Add registers job under spec.
func (s *Scheduler) Add(name, spec string, job func(context.Context) error) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		start := s.now()
		s.logger.InfoContext(s.ctx, "Scheduled job started", "job", name)
		if err := job(s.ctx); err != nil {
			s.logger.ErrorContext(s.ctx, "Scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.InfoContext(s.ctx, "Scheduled job finished", "job", name, "duration", s.now().Sub(start))
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	return id, nil
}

// Next reports when an entry runs next.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

// Start runs the jobs in the background; each run receives ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
