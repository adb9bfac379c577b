// Package otp implements the one-time-code challenge used to verify phone or
// email ownership before a booking is accepted from the public flow.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

var (
	// ErrNotFound is returned when no challenge exists for the contact id.
	ErrNotFound = errors.New("otp: no challenge for contact")
	// ErrExpired is returned when the code's window has passed.
	ErrExpired = errors.New("otp: code expired")
	// ErrAttemptsExhausted is returned once the attempt ceiling is reached.
	ErrAttemptsExhausted = errors.New("otp: attempts exhausted")
	// ErrInvalidCode is returned on a code mismatch.
	ErrInvalidCode = errors.New("otp: invalid code")
)

// Challenge is the single live one-time-code record for a contact identifier.
// Requesting a new code overwrites the record in place; expired or exhausted
// records stay until a fresh request resurrects them.
type Challenge struct {
	Contact   string    `json:"contact"`
	Code      string    `json:"code"`
	Verified  bool      `json:"verified"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the challenge window has passed at the given time.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// GenerateCode produces a 6-digit decimal code from the system's random
// source. Codes are uniform over [000000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
