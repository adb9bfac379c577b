package services

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a service does not exist.
var ErrNotFound = errors.New("service not found")

// Service is a treatment the clinic offers. Like doctors, bookings reference
// services weakly: deleting a service clears the reference on bookings.
type Service struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	CostCents       int64     `json:"cost_cents"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks required fields for create/update.
func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("service name is required")
	}
	if s.DurationMinutes <= 0 {
		return errors.New("service duration must be positive")
	}
	if s.CostCents < 0 {
		return errors.New("service cost must not be negative")
	}
	return nil
}
