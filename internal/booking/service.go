package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surabicare/clinic-scheduler/internal/clock"
	"github.com/surabicare/clinic-scheduler/internal/doctors"
	"github.com/surabicare/clinic-scheduler/internal/notify"
	"github.com/surabicare/clinic-scheduler/internal/observability/metrics"
	"github.com/surabicare/clinic-scheduler/internal/schedule"
	"github.com/surabicare/clinic-scheduler/internal/services"
	"github.com/surabicare/clinic-scheduler/internal/token"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// DoctorDirectory resolves doctor references on bookings.
type DoctorDirectory interface {
	Get(ctx context.Context, id int64) (*doctors.Doctor, error)
}

// ServiceDirectory resolves service references on bookings.
type ServiceDirectory interface {
	Get(ctx context.Context, id int64) (*services.Service, error)
}

// OTPGate answers whether a contact has a verified live challenge.
type OTPGate interface {
	IsVerified(ctx context.Context, contact string) (bool, error)
}

// Service owns the booking lifecycle: creation with the OTP gate and
// conflict check, staff transitions, and the batch jobs.
type Service struct {
	store      Store
	grid       *schedule.Grid
	notifier   notify.Notifier
	tokens     *token.Authorizer
	doctors    DoctorDirectory
	services   ServiceDirectory
	otp        OTPGate
	clinic     notify.ClinicInfo
	adminEmail string
	baseURL    string
	otpChannel string
	clock      clock.Clock
	metrics    *metrics.SchedulerMetrics
	logger     *logging.Logger
}

// Options configures the booking service. AdminEmail empty disables the
// staff alert; OTPChannel selects which contact field gates creation.
type Options struct {
	AdminEmail string
	BaseURL    string
	OTPChannel string
	Clock      clock.Clock
	Metrics    *metrics.SchedulerMetrics
	Logger     *logging.Logger
}

func NewService(store Store, grid *schedule.Grid, notifier notify.Notifier, tokens *token.Authorizer, docs DoctorDirectory, svcs ServiceDirectory, otp OTPGate, clinic notify.ClinicInfo, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.OTPChannel == "" {
		opts.OTPChannel = "email"
	}
	return &Service{
		store:      store,
		grid:       grid,
		notifier:   notifier,
		tokens:     tokens,
		doctors:    docs,
		services:   svcs,
		otp:        otp,
		clinic:     clinic,
		adminEmail: opts.AdminEmail,
		baseURL:    opts.BaseURL,
		otpChannel: opts.OTPChannel,
		clock:      opts.Clock,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
}

// CreateInput is the public booking request.
type CreateInput struct {
	PatientName string `json:"patient_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Date        string `json:"appointment_date"`
	Time        string `json:"appointment_time"`
	DoctorID    *int64 `json:"doctor_id,omitempty"`
	ServiceID   *int64 `json:"service_id,omitempty"`
}

// CreateResult reports the created booking plus the admin-alert outcome,
// which never fails the creation itself.
type CreateResult struct {
	Booking  *Booking
	AlertErr error
}

// Create validates the request, enforces the OTP gate, and inserts the
// booking through the store's atomic conflict check.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	b := &Booking{
		PatientName: in.PatientName,
		Email:       in.Email,
		Phone:       in.Phone,
		DoctorID:    in.DoctorID,
		ServiceID:   in.ServiceID,
	}
	fields := b.ValidateFields()

	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		fields["appointment_date"] = "must be a valid date (YYYY-MM-DD)"
	} else {
		b.Date = date
		if date.Before(truncateDay(s.clock.Now())) {
			fields["appointment_date"] = "cannot be in the past"
		}
	}

	slot, err := schedule.ParseSlot(in.Time)
	if err != nil {
		fields["appointment_time"] = "must be a valid time (HH:MM)"
	} else {
		b.Slot = slot
		if s.grid != nil && !s.grid.Contains(slot) {
			fields["appointment_time"] = "is outside clinic hours"
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.checkReferences(ctx, b); err != nil {
		return nil, err
	}

	verified, err := s.otp.IsVerified(ctx, s.otpContact(b))
	if err != nil {
		return nil, fmt.Errorf("booking: otp gate: %w", err)
	}
	if !verified {
		return nil, ErrOTPNotVerified
	}
	b.OTPVerified = true

	if err := s.store.Create(ctx, b); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveBookingConflict()
		}
		return nil, err
	}
	s.metrics.ObserveBookingCreated()
	s.logger.Info("booking created", "id", b.ID, "date", in.Date, "time", in.Time)

	res := &CreateResult{Booking: b}
	if s.adminEmail != "" {
		appt := s.AppointmentView(ctx, b)
		msg := notify.AdminAlertMessage(s.clinic, appt, s.adminEmail)
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Warn("admin alert failed", "booking_id", b.ID, "error", err)
			res.AlertErr = err
		}
	}
	return res, nil
}

func (s *Service) checkReferences(ctx context.Context, b *Booking) error {
	fields := map[string]string{}
	if b.DoctorID != nil {
		doc, err := s.doctors.Get(ctx, *b.DoctorID)
		switch {
		case errors.Is(err, doctors.ErrNotFound):
			fields["doctor_id"] = "unknown doctor"
		case err != nil:
			return fmt.Errorf("booking: doctor lookup: %w", err)
		case !doc.Active:
			fields["doctor_id"] = "doctor is not accepting appointments"
		}
	}
	if b.ServiceID != nil {
		svc, err := s.services.Get(ctx, *b.ServiceID)
		switch {
		case errors.Is(err, services.ErrNotFound):
			fields["service_id"] = "unknown service"
		case err != nil:
			return fmt.Errorf("booking: service lookup: %w", err)
		case !svc.Active:
			fields["service_id"] = "service is not offered"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *Service) otpContact(b *Booking) string {
	if s.otpChannel == "phone" {
		return b.Phone
	}
	return b.Email
}

// Get returns one booking.
func (s *Service) Get(ctx context.Context, id int64) (*Booking, error) {
	return s.store.Get(ctx, id)
}

// List returns bookings newest first, optionally filtered.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Booking, error) {
	return s.store.List(ctx, f)
}

// AppointmentView assembles the notification view. Lookups are best effort;
// a missing doctor row just drops the name from the message.
func (s *Service) AppointmentView(ctx context.Context, b *Booking) notify.Appointment {
	appt := notify.Appointment{
		BookingID:   b.ID,
		PatientName: b.PatientName,
		Email:       b.Email,
		Phone:       b.Phone,
		Date:        b.Date,
		TimeDisplay: b.TimeDisplay(),
	}
	if b.DoctorID != nil && s.doctors != nil {
		if doc, err := s.doctors.Get(ctx, *b.DoctorID); err == nil {
			appt.DoctorName = doc.Name
		}
	}
	return appt
}
