// Package clock provides an injectable time source so date-sensitive logic
// (availability, OTP expiry, completion sweeps) can be tested deterministically.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall-clock implementation used in production.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock frozen at a single instant, for tests.
type Fixed struct {
	At time.Time
}

// Now returns the frozen instant.
func (f Fixed) Now() time.Time { return f.At }

// NewFixed returns a Clock frozen at t.
func NewFixed(t time.Time) Fixed { return Fixed{At: t} }
