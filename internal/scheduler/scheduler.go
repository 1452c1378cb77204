package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds one pipeline run. Video rendering dominates, so the
// window is generous.
const jobTimeout = 30 * time.Minute

// Job is a scheduled task.
type Job func(ctx context.Context) error

// Scheduler triggers the daily digest run at a configured local time.
type Scheduler struct {
	cron     *cron.Cron
	jobs     map[string]cron.EntryID
	timezone *time.Location
	logger   *slog.Logger
}

// New creates a scheduler in the given timezone, e.g. "Asia/Seoul".
func New(timezone string, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		jobs:     make(map[string]cron.EntryID),
		timezone: loc,
		logger:   logger,
	}, nil
}

// AddJob registers a job under a cron schedule like "0 7 * * *".
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		s.logger.Info("scheduled job starting", "job", name)
		start := time.Now()

		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.Info("scheduled job done", "job", name, "took", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info("job scheduled", "job", name, "schedule", schedule, "timezone", s.timezone.String())
	return nil
}

// AddDailyJob registers a job at a daily wall-clock time ("07:00").
func (s *Scheduler) AddDailyJob(name, timeStr string, job Job) error {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return fmt.Errorf("invalid time format %s: %w", timeStr, err)
	}
	return s.AddJob(name, fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), job)
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling; the returned context is done once running jobs
// finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// NextRun reports when the named job fires next (zero time if unknown).
func (s *Scheduler) NextRun(name string) time.Time {
	entryID, ok := s.jobs[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(entryID).Next
}
