package schedule

import (
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a set of weekdays a doctor consults on, stored as a bitmask
// indexed by time.Weekday (Sunday = bit 0).
type WeekdaySet uint8

var weekdayCodes = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// ParseWeekdays parses a comma-separated list of three-letter day codes
// ("Mon,Wed,Fri"). An empty input yields the empty set.
func ParseWeekdays(s string) (WeekdaySet, error) {
	var set WeekdaySet
	s = strings.TrimSpace(s)
	if s == "" {
		return set, nil
	}
	for _, part := range strings.Split(s, ",") {
		code := strings.ToLower(strings.TrimSpace(part))
		day, ok := weekdayCodes[code]
		if !ok {
			return 0, fmt.Errorf("schedule: unknown weekday code %q", part)
		}
		set = set.With(day)
	}
	return set, nil
}

// With returns the set with the given weekday added.
func (w WeekdaySet) With(day time.Weekday) WeekdaySet {
	return w | (1 << uint(day))
}

// Has reports whether the set contains the given weekday.
func (w WeekdaySet) Has(day time.Weekday) bool {
	return w&(1<<uint(day)) != 0
}

// IsEmpty reports whether no weekdays are set.
func (w WeekdaySet) IsEmpty() bool { return w == 0 }

// String renders the set in Mon..Sun order as comma-separated codes.
func (w WeekdaySet) String() string {
	var parts []string
	for _, day := range weekdayOrder {
		if w.Has(day) {
			parts = append(parts, day.String()[:3])
		}
	}
	return strings.Join(parts, ",")
}
