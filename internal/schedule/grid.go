package schedule

import (
	"fmt"
	"time"
)

// Grid is the fixed, ordered sequence of bookable slots for a business day.
// The clinic is closed on Sunday; callers see that through Engine.Availability
// rather than the grid itself.
type Grid struct {
	slots []Slot
}

// NewGrid builds a grid of slots from open (inclusive) to close (exclusive)
// at the given interval.
func NewGrid(open, close string, interval time.Duration) (Grid, error) {
	start, err := ParseSlot(open)
	if err != nil {
		return Grid{}, fmt.Errorf("schedule: grid open: %w", err)
	}
	end, err := ParseSlot(close)
	if err != nil {
		return Grid{}, fmt.Errorf("schedule: grid close: %w", err)
	}
	step := int(interval.Minutes())
	if step <= 0 {
		return Grid{}, fmt.Errorf("schedule: grid interval must be positive, got %s", interval)
	}
	if end <= start {
		return Grid{}, fmt.Errorf("schedule: grid close %s not after open %s", end, start)
	}

	var slots []Slot
	for at := start; at < end; at += Slot(step) {
		slots = append(slots, at)
	}
	return Grid{slots: slots}, nil
}

// MustGrid builds a grid and panics on error. For fixed literal configurations.
func MustGrid(open, close string, interval time.Duration) Grid {
	g, err := NewGrid(open, close, interval)
	if err != nil {
		panic(err)
	}
	return g
}

// Slots returns the grid in chronological order. The returned slice is a copy.
func (g Grid) Slots() []Slot {
	out := make([]Slot, len(g.slots))
	copy(out, g.slots)
	return out
}

// Contains reports whether the slot is one of the grid's values.
func (g Grid) Contains(s Slot) bool {
	for _, slot := range g.slots {
		if slot == s {
			return true
		}
	}
	return false
}

// Len returns the number of slots in a business day.
func (g Grid) Len() int { return len(g.slots) }
