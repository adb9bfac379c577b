package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot is a bookable time of day, expressed as minutes since midnight.
// The fixed daily grid enumerates the valid values; the legacy buffer policy
// accepts free-form times.
type Slot int

// ParseSlot parses a 24-hour "HH:MM" value.
func ParseSlot(s string) (Slot, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("schedule: invalid time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("schedule: invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("schedule: invalid minute in %q", s)
	}
	return Slot(hour*60 + minute), nil
}

// Hour returns the slot's hour component (0-23).
func (s Slot) Hour() int { return int(s) / 60 }

// Minute returns the slot's minute component (0-59).
func (s Slot) Minute() int { return int(s) % 60 }

// String formats the slot as 24-hour "HH:MM".
func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour(), s.Minute())
}

// MarshalJSON renders the slot as a 24-hour "HH:MM" string.
func (s Slot) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// UnmarshalJSON accepts a 24-hour "HH:MM" string.
func (s *Slot) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("schedule: slot must be a string: %w", err)
	}
	parsed, err := ParseSlot(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Format12Hour formats the slot as "03:04 PM", the display form used on the
// greeting page and in notification emails.
func (s Slot) Format12Hour() string {
	hour := s.Hour()
	suffix := "AM"
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		hour -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", hour, s.Minute(), suffix)
}
