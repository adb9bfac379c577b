// Package jobs runs the scheduled booking maintenance: the nightly
// completion sweep and the morning reminder batch.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/surabicare/clinic-scheduler/internal/booking"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// Config carries the cron specs. Empty specs disable the corresponding job.
type Config struct {
	SweepSpec    string
	ReminderSpec string
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron     *cron.Cron
	bookings *booking.Service
	logger   *logging.Logger
}

// New builds the scheduler without starting it.
func New(bookings *booking.Service, cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Scheduler{
		cron:     cron.New(),
		bookings: bookings,
		logger:   logger,
	}

	if cfg.SweepSpec != "" {
		if _, err := s.cron.AddFunc(cfg.SweepSpec, s.runSweep); err != nil {
			return nil, err
		}
	}
	if cfg.ReminderSpec != "" {
		if _, err := s.cron.AddFunc(cfg.ReminderSpec, s.runReminders); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start begins running jobs on their schedules.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("job scheduler stop timed out")
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := s.bookings.CompleteExpired(ctx)
	if err != nil {
		s.logger.Error("completion sweep failed", "error", err)
		return
	}
	s.logger.Info("completion sweep finished", "completed", n)
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	report, err := s.bookings.SendReminders(ctx)
	if err != nil {
		s.logger.Error("reminder batch failed", "error", err)
		return
	}
	s.logger.Info("reminder batch finished", "sent", report.Sent, "failed", report.Failed)
}
