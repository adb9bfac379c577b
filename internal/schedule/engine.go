package schedule

import (
	"context"
	"fmt"
	"time"
)

// Policy selects how booking conflicts are judged. The fixed slot grid is the
// current mode; the buffer policy is the legacy free-form-time rule and is kept
// selectable behind the same engine.
type Policy string

const (
	// PolicySlotGrid treats a slot as taken only on an exact time match.
	PolicySlotGrid Policy = "grid"
	// PolicyBuffer treats any time within the buffer window (inclusive on
	// both ends) of an existing booking as a conflict.
	PolicyBuffer Policy = "buffer"
)

// BookingSource supplies the slot times of non-terminal bookings. Only
// pending and accepted bookings count toward conflicts.
type BookingSource interface {
	ActiveSlots(ctx context.Context, date time.Time, doctorID *int64) ([]Slot, error)
}

// DoctorCalendar supplies per-doctor consulting rules.
type DoctorCalendar interface {
	Schedule(ctx context.Context, doctorID int64) (DoctorSchedule, error)
}

// DoctorSchedule is the slice of doctor state the engine needs.
type DoctorSchedule struct {
	Name   string
	Active bool
	// Days is the set of weekdays the doctor consults on. An empty set means
	// every open day.
	Days WeekdaySet
}

// Result is the availability picture for one date. When Closed is true,
// Available is empty and Booked carries the full grid so callers can render a
// uniformly full day.
type Result struct {
	Date      time.Time `json:"date"`
	Closed    bool      `json:"closed"`
	Reason    string    `json:"reason,omitempty"`
	Booked    []Slot    `json:"booked"`
	Available []Slot    `json:"available"`
}

// Engine computes slot availability from the grid, existing bookings, and
// doctor calendars.
type Engine struct {
	grid     Grid
	bookings BookingSource
	doctors  DoctorCalendar
}

// NewEngine creates an availability engine. doctors may be nil when no doctor
// scoping is in use.
func NewEngine(grid Grid, bookings BookingSource, doctors DoctorCalendar) *Engine {
	return &Engine{grid: grid, bookings: bookings, doctors: doctors}
}

// Grid returns the engine's slot grid.
func (e *Engine) Grid() Grid { return e.grid }

// Availability computes booked and free slots for a date, optionally scoped to
// a doctor. Slot ordering follows the grid, not booking insertion order.
func (e *Engine) Availability(ctx context.Context, date time.Time, doctorID *int64) (Result, error) {
	if date.Weekday() == time.Sunday {
		return e.closedResult(date, "closed on Sunday"), nil
	}

	if doctorID != nil {
		if e.doctors == nil {
			return Result{}, fmt.Errorf("schedule: doctor filter requested but no doctor calendar configured")
		}
		sched, err := e.doctors.Schedule(ctx, *doctorID)
		if err != nil {
			return Result{}, fmt.Errorf("schedule: doctor calendar: %w", err)
		}
		if !sched.Active {
			return e.closedResult(date, fmt.Sprintf("%s is not currently accepting appointments", sched.Name)), nil
		}
		if !sched.Days.IsEmpty() && !sched.Days.Has(date.Weekday()) {
			return e.closedResult(date, fmt.Sprintf("%s does not consult on %s", sched.Name, date.Weekday())), nil
		}
	}

	taken, err := e.bookings.ActiveSlots(ctx, date, doctorID)
	if err != nil {
		return Result{}, fmt.Errorf("schedule: active slots: %w", err)
	}

	takenSet := make(map[Slot]bool, len(taken))
	for _, s := range taken {
		takenSet[s] = true
	}

	booked := make([]Slot, 0, len(takenSet))
	available := make([]Slot, 0, e.grid.Len())
	for _, slot := range e.grid.Slots() {
		if takenSet[slot] {
			booked = append(booked, slot)
		} else {
			available = append(available, slot)
		}
	}

	return Result{Date: date, Booked: booked, Available: available}, nil
}

func (e *Engine) closedResult(date time.Time, reason string) Result {
	return Result{
		Date:      date,
		Closed:    true,
		Reason:    reason,
		Booked:    e.grid.Slots(),
		Available: []Slot{},
	}
}

// BufferConflict reports whether candidate falls within bufferMinutes of
// existing, inclusive on both ends: exactly bufferMinutes away is a conflict,
// bufferMinutes+1 away is not.
func BufferConflict(existing, candidate Slot, bufferMinutes int) bool {
	delta := int(existing) - int(candidate)
	if delta < 0 {
		delta = -delta
	}
	return delta <= bufferMinutes
}
