package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a booking does not exist.
	ErrNotFound = errors.New("booking not found")
	// ErrSlotTaken is returned when the conflict-checked insert loses the
	// slot to another booking.
	ErrSlotTaken = errors.New("time slot is not available")
	// ErrOTPNotVerified is returned when booking creation is attempted
	// without a verified challenge for the contact id.
	ErrOTPNotVerified = errors.New("contact is not verified")
	// ErrStaleStatus is returned when a compare-and-set transition loses a
	// race with a concurrent staff action.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)

// ValidationError carries field-scoped input problems. It is an expected
// outcome surfaced verbatim to the client.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: invalid input in %d field(s)", len(e.Fields))
}

// TransitionError reports a status transition the state machine forbids,
// including re-entering a terminal state.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("booking: transition %s -> %s is not permitted", e.From, e.To)
}
