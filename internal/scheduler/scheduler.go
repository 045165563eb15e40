// Package scheduler runs the periodic maintenance jobs: database backups and
// the monthly spreadsheet archive.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"condoflow/internal/metrics"
)

// Job is the body of a scheduled job.
type Job func(ctx context.Context) error

type entry struct {
	id  cron.EntryID
	job Job
}

// Scheduler wraps a cron runner with logging, metrics and a per-run timeout.
type Scheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	timeout time.Duration

	jobs   map[string]entry
	jobsMu sync.RWMutex
}

func New(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		logger:  logger.With().Str("component", "scheduler").Logger(),
		timeout: 30 * time.Minute,
		jobs:    make(map[string]entry),
	}
}

// Add registers job under name with a five-field cron spec. Adding a name
// twice replaces the earlier schedule.
func (s *Scheduler) Add(name, spec string, job Job) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if existing, ok := s.jobs[name]; ok {
		s.cron.Remove(existing.id)
		delete(s.jobs, name)
	}

	id, err := s.cron.AddFunc(spec, func() { s.execute(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.jobs[name] = entry{id: id, job: job}
	s.logger.Info().Str("job", name).Str("schedule", spec).Msg("Job scheduled")
	return nil
}

// Run executes a registered job immediately.
func (s *Scheduler) Run(name string) error {
	s.jobsMu.RLock()
	e, ok := s.jobs[name]
	s.jobsMu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.execute(name, e.job)
}

// Next returns the next planned run of name, or the zero time before Start.
func (s *Scheduler) Next(name string) time.Time {
	s.jobsMu.RLock()
	e, ok := s.jobs[name]
	s.jobsMu.RUnlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(e.id).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) execute(name string, job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	metrics.IncJob(name, err)

	if err != nil {
		s.logger.Error().Err(err).Str("job", name).Dur("elapsed", time.Since(start)).Msg("Job failed")
		return err
	}
	s.logger.Info().Str("job", name).Dur("elapsed", time.Since(start)).Msg("Job completed")
	return nil
}
