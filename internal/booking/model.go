package booking

import (
	"regexp"
	"strings"
	"time"

	"github.com/surabicare/clinic-scheduler/internal/schedule"
)

// Status is the booking lifecycle state. Pending is the only state with a
// full set of outgoing transitions; rejected, completed, and cancelled are
// terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no transition may leave the status.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether the booking counts toward slot conflicts.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusAccepted
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking is one appointment request. Doctor and service references are weak:
// they null out when the referenced row is removed.
type Booking struct {
	ID           int64         `json:"id"`
	PatientName  string        `json:"patient_name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Date         time.Time     `json:"date"`
	Slot         schedule.Slot `json:"slot"`
	Status       Status        `json:"status"`
	DoctorID     *int64        `json:"doctor_id,omitempty"`
	ServiceID    *int64        `json:"service_id,omitempty"`
	OTPVerified  bool          `json:"otp_verified"`
	ReminderSent bool          `json:"reminder_sent"`
	CreatedAt    time.Time     `json:"created_at"`
}

// TimeDisplay renders the slot in the 12-hour form used on the greeting page
// and in emails.
func (b *Booking) TimeDisplay() string {
	return b.Slot.Format12Hour()
}

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateFields checks the patient-supplied fields and collects every problem
// into a field-scoped map.
func (b *Booking) ValidateFields() map[string]string {
	problems := make(map[string]string)
	if strings.TrimSpace(b.PatientName) == "" {
		problems["patient_name"] = "name is required"
	}
	if strings.TrimSpace(b.Email) == "" {
		problems["email"] = "email is required"
	} else if !emailPattern.MatchString(b.Email) {
		problems["email"] = "enter a valid email address"
	}
	if strings.TrimSpace(b.Phone) == "" {
		problems["phone"] = "phone is required"
	} else if !phonePattern.MatchString(b.Phone) {
		problems["phone"] = "enter a valid 10-digit phone number"
	}
	return problems
}
