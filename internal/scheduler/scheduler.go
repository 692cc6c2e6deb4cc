package scheduler

import (
	"fmt"
	"time"

	"github.com/segyhp/rental-engine/internal/config"
	"github.com/segyhp/rental-engine/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron  *cron.Cron
	sweep *OverdueSweep
	loc   *time.Location
}

// NewScheduler creates a scheduler running in loc with seconds precision
func NewScheduler(cfg config.SchedulerConfig, loc *time.Location, sweep *OverdueSweep) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:  c,
		sweep: sweep,
		loc:   loc,
	}

	if _, err := s.cron.AddFunc(cfg.OverdueSweep, s.sweep.RunJob); err != nil {
		return nil, fmt.Errorf("register overdue sweep %q: %w", cfg.OverdueSweep, err)
	}

	logger.Info("Cron jobs registered", "overdue_sweep", cfg.OverdueSweep)
	return s, nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop waits for running jobs before returning
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Next reports when the sweep will run next.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(time.Now().In(s.loc))
}
