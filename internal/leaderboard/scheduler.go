package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule recalculates at the top of every hour.
const DefaultSchedule = "@hourly"

// runTimeout bounds one scheduled run.
const runTimeout = 10 * time.Minute

// Scheduler triggers pipeline runs on a cron schedule. A run still in
// progress when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler parses schedule (standard five-field cron or a descriptor such as
// @hourly) and registers the job. Nothing runs until Start.
func NewScheduler(pipeline *Pipeline, schedule string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}

	cl := cronLogger{logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	s := &Scheduler{cron: c, pipeline: pipeline, logger: logger}
	if _, err := c.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid leaderboard schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	// Errors are logged and counted by the pipeline.
	_, _ = s.pipeline.Run(ctx, "cron")
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Leaderboard scheduler started", "next_run", s.Next())
}

// Stop prevents new runs and waits for a running one, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Next is the time of the next scheduled run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
