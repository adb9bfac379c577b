package doctors

import (
	"context"

	"github.com/surabicare/clinic-scheduler/internal/schedule"
)

// Calendar adapts a doctor Store to the availability engine's DoctorCalendar.
type Calendar struct {
	store Store
}

// NewCalendar creates the adapter.
func NewCalendar(store Store) *Calendar {
	return &Calendar{store: store}
}

// Schedule returns the consulting rules for a doctor.
func (c *Calendar) Schedule(ctx context.Context, doctorID int64) (schedule.DoctorSchedule, error) {
	d, err := c.store.Get(ctx, doctorID)
	if err != nil {
		return schedule.DoctorSchedule{}, err
	}
	return schedule.DoctorSchedule{
		Name:   d.Name,
		Active: d.Active,
		Days:   d.Days,
	}, nil
}
