package cache

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler fires one precompute pass per day at a fixed local time,
// matching the upstream registry's nightly publication cycle.
type Scheduler struct {
	hour   int
	minute int
	run    func(context.Context) error
	log    *slog.Logger

	now func() time.Time
}

func NewScheduler(hour, minute int, run func(context.Context) error, log *slog.Logger) *Scheduler {
	return &Scheduler{hour: hour, minute: minute, run: run, log: log, now: time.Now}
}

// nextRunAt returns the next occurrence of the configured wall time strictly
// after now.
func (s *Scheduler) nextRunAt(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start blocks until ctx is canceled, firing the job at each scheduled
// time. Run it in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		next := s.nextRunAt(s.now())
		s.log.Info("next precompute scheduled", "at", next)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if err := s.run(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Error("scheduled precompute failed", "error", err)
		}
	}
}
