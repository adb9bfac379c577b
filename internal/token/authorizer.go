// Package token issues and validates the signed tokens that guard the
// post-booking confirmation artifact (QR image and greeting page). Tokens are
// verified statelessly: possession of a token signed over the right booking id
// is the whole authorization decision.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/surabicare/clinic-scheduler/internal/clock"
)

// Reason explains a denial. All reasons map to the same external access-denied
// response; they are distinguished for logs only.
type Reason string

const (
	ReasonMissing  Reason = "missing token"
	ReasonInvalid  Reason = "invalid token"
	ReasonMismatch Reason = "token does not match"
	ReasonExpired  Reason = "token expired"
)

// Decision is the structured outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Authorizer signs booking ids with a process-wide secret.
type Authorizer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// New creates an authorizer. A zero ttl issues tokens with no time bound, so
// confirmation links stay valid for the life of the booking.
func New(secret string, ttl time.Duration, clk clock.Clock) (*Authorizer, error) {
	if secret == "" {
		return nil, errors.New("token: secret is required")
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Authorizer{secret: []byte(secret), ttl: ttl, clock: clk}, nil
}

// Issue produces a signed token bound to the booking id.
func (a *Authorizer) Issue(bookingID int64) (string, error) {
	now := a.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:  strconv.FormatInt(bookingID, 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if a.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Authorize checks a token against the requested booking id. It returns a
// decision rather than an error: denial is an expected outcome, not a fault.
func (a *Authorizer) Authorize(bookingID int64, tokenString string) Decision {
	if tokenString == "" {
		return Decision{Reason: ReasonMissing}
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.clock.Now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Decision{Reason: ReasonExpired}
		}
		return Decision{Reason: ReasonInvalid}
	}
	if !parsed.Valid {
		return Decision{Reason: ReasonInvalid}
	}
	if claims.Subject != strconv.FormatInt(bookingID, 10) {
		return Decision{Reason: ReasonMismatch}
	}
	return Decision{Allowed: true}
}
