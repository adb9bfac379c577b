package doctors

import (
	"errors"
	"strings"
	"time"

	"github.com/surabicare/clinic-scheduler/internal/schedule"
)

// ErrNotFound is returned when a doctor does not exist.
var ErrNotFound = errors.New("doctor not found")

// Doctor is a consulting practitioner. Bookings reference doctors weakly:
// removing a doctor clears the reference on existing bookings, it never
// removes the bookings.
type Doctor struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	Specialization string              `json:"specialization"`
	Email          string              `json:"email,omitempty"`
	Phone          string              `json:"phone,omitempty"`
	PhotoURL       string              `json:"photo_url,omitempty"`
	Active         bool                `json:"active"`
	Days           schedule.WeekdaySet `json:"-"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Validate checks required fields for create/update.
func (d *Doctor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("doctor name is required")
	}
	return nil
}
