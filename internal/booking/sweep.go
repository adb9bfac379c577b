package booking

import (
	"context"
	"time"

	"github.com/surabicare/clinic-scheduler/internal/notify"
	"github.com/surabicare/clinic-scheduler/internal/schedule"
)

// CompleteExpired moves every active booking whose date and time are in the
// past into completed. Safe to run repeatedly; reruns find nothing to change.
func (s *Service) CompleteExpired(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	start := time.Now()
	n, err := s.store.CompleteExpired(ctx, truncateDay(now), schedule.Slot(now.Hour()*60+now.Minute()))
	if err != nil {
		return 0, err
	}
	s.metrics.ObserveSweep(time.Since(start).Seconds(), int(n))
	if n > 0 {
		s.logger.Info("completion sweep", "completed", n)
	}
	return n, nil
}

// ReminderReport counts the outcomes of one reminder batch.
type ReminderReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// SendReminders notifies every accepted booking scheduled for tomorrow that
// has not been reminded yet. A failed send leaves reminder_sent false so the
// next run retries it, and never blocks the rest of the batch.
func (s *Service) SendReminders(ctx context.Context) (ReminderReport, error) {
	tomorrow := truncateDay(s.clock.Now()).AddDate(0, 0, 1)
	due, err := s.store.ListReminderDue(ctx, tomorrow)
	if err != nil {
		return ReminderReport{}, err
	}

	var report ReminderReport
	for i := range due {
		b := &due[i]
		appt := s.AppointmentView(ctx, b)
		if err := s.notifier.Send(ctx, notify.ReminderMessage(s.clinic, appt)); err != nil {
			s.logger.Warn("reminder failed", "booking_id", b.ID, "error", err)
			s.metrics.ObserveReminder("failed")
			report.Failed++
			continue
		}
		if err := s.store.MarkReminderSent(ctx, b.ID); err != nil {
			s.logger.Warn("reminder flag update failed", "booking_id", b.ID, "error", err)
			report.Failed++
			continue
		}
		s.metrics.ObserveReminder("sent")
		report.Sent++
	}
	return report, nil
}
