package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/surabicare/clinic-scheduler/internal/clock"
	"github.com/surabicare/clinic-scheduler/internal/notify"
	"github.com/surabicare/clinic-scheduler/internal/observability/metrics"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// Service issues and verifies one-time codes. Each Request replaces the
// contact's live challenge; Verify walks the fixed decision order
// not-found, already-verified, expired, exhausted, mismatch, match.
type Service struct {
	store       Store
	notifier    notify.Notifier
	clinic      notify.ClinicInfo
	ttl         time.Duration
	maxAttempts int
	clock       clock.Clock
	metrics     *metrics.SchedulerMetrics
	logger      *logging.Logger

	// generate is swappable in tests.
	generate func() (string, error)
}

// Options configures the OTP service.
type Options struct {
	TTL         time.Duration
	MaxAttempts int
	Clock       clock.Clock
	Metrics     *metrics.SchedulerMetrics
	Logger      *logging.Logger
}

// NewService creates the OTP service.
func NewService(store Store, notifier notify.Notifier, clinic notify.ClinicInfo, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Service{
		store:       store,
		notifier:    notifier,
		clinic:      clinic,
		ttl:         opts.TTL,
		maxAttempts: opts.MaxAttempts,
		clock:       opts.Clock,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		generate:    GenerateCode,
	}
}

// RequestResult reports an issued challenge and whether the code reached the
// recipient. The challenge exists either way; a delivery failure is a
// secondary outcome.
type RequestResult struct {
	Delivered   bool
	DeliveryErr error
}

// Request issues a fresh code for the contact id, resetting attempts, the
// verified flag, and the expiry window even when an unexpired challenge
// exists.
func (s *Service) Request(ctx context.Context, contact string) (RequestResult, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return RequestResult{}, fmt.Errorf("otp: contact id is required")
	}

	code, err := s.generate()
	if err != nil {
		return RequestResult{}, err
	}

	now := s.clock.Now()
	ch := &Challenge{
		Contact:   contact,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Upsert(ctx, ch); err != nil {
		return RequestResult{}, err
	}
	s.metrics.ObserveOTP("issued")
	s.logger.Info("otp challenge issued", "contact", contact, "expires_at", ch.ExpiresAt)

	if err := s.notifier.Send(ctx, notify.OTPMessage(s.clinic, contact, code, s.ttl)); err != nil {
		// The challenge stands; the caller decides how to surface the
		// delivery failure.
		return RequestResult{Delivered: false, DeliveryErr: err}, nil
	}
	return RequestResult{Delivered: true}, nil
}

// Verify checks a submitted code. A nil return means the challenge is
// verified; re-verifying an already verified challenge is a no-op success.
func (s *Service) Verify(ctx context.Context, contact, code string) error {
	contact = strings.TrimSpace(contact)
	code = strings.TrimSpace(code)

	err := s.store.Mutate(ctx, contact, func(ch *Challenge) (bool, error) {
		if ch.Verified {
			return false, nil
		}
		if ch.Expired(s.clock.Now()) {
			if ch.Attempts < s.maxAttempts {
				ch.Attempts++
				return true, ErrExpired
			}
			return false, ErrExpired
		}
		if ch.Attempts >= s.maxAttempts {
			return false, ErrAttemptsExhausted
		}
		if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
			ch.Attempts++
			if ch.Attempts >= s.maxAttempts {
				return true, ErrAttemptsExhausted
			}
			return true, ErrInvalidCode
		}
		ch.Verified = true
		return true, nil
	})

	switch {
	case err == nil:
		s.metrics.ObserveOTP("verified")
		s.logger.Info("otp verified", "contact", contact)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrExpired),
		errors.Is(err, ErrAttemptsExhausted), errors.Is(err, ErrInvalidCode):
		s.metrics.ObserveOTP("rejected")
	}
	return err
}

// IsVerified reports whether the contact's live challenge is verified. Booking
// creation gates on this.
func (s *Service) IsVerified(ctx context.Context, contact string) (bool, error) {
	ch, err := s.store.Get(ctx, strings.TrimSpace(contact))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ch.Verified, nil
}
