package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/surabicare/clinic-scheduler/internal/schedule"
)

// ListFilter narrows admin booking lists.
type ListFilter struct {
	Status   *Status
	Date     *time.Time
	DoctorID *int64
}

// Store is the persistence contract for bookings. Create must be atomic with
// respect to the conflict check: two concurrent inserts for the same key yield
// exactly one row and one ErrSlotTaken.
type Store interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, f ListFilter) ([]Booking, error)
	// ActiveSlots feeds the availability engine.
	ActiveSlots(ctx context.Context, date time.Time, doctorID *int64) ([]schedule.Slot, error)
	// UpdateStatusCAS moves a booking from one status to another only when
	// the stored status still equals from. Returns false when the
	// compare-and-set lost a race.
	UpdateStatusCAS(ctx context.Context, id int64, from, to Status) (bool, error)
	// CompleteExpired marks every active booking strictly before the given
	// date/time as completed and returns the number of rows changed.
	CompleteExpired(ctx context.Context, today time.Time, now schedule.Slot) (int64, error)
	// ListReminderDue returns accepted, un-reminded bookings on the date.
	ListReminderDue(ctx context.Context, date time.Time) ([]Booking, error)
	MarkReminderSent(ctx context.Context, id int64) error
	ClearDoctor(ctx context.Context, doctorID int64) error
	ClearService(ctx context.Context, serviceID int64) error
}

// ConflictPolicy tells the store how to judge a slot collision at insert time.
type ConflictPolicy struct {
	Mode          schedule.Policy
	BufferMinutes int
}

// DB abstracts the pgx query interface for testing.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists bookings in Postgres. In grid mode the partial
// unique index over (date, slot, doctor) on active statuses closes the
// check-then-act race; in buffer mode a per-date advisory lock serializes
// the window check with the insert.
type PostgresStore struct {
	db     DB
	policy ConflictPolicy
}

// NewPostgresStore creates a booking store over a pgx pool or mock.
func NewPostgresStore(db DB, policy ConflictPolicy) *PostgresStore {
	if policy.Mode == "" {
		policy.Mode = schedule.PolicySlotGrid
	}
	return &PostgresStore{db: db, policy: policy}
}

const bookingColumns = `id, patient_name, email, phone, appointment_date, slot_minutes, status, doctor_id, service_id, otp_verified, reminder_sent, created_at`

func (s *PostgresStore) Create(ctx context.Context, b *Booking) error {
	b.Status = StatusPending
	b.CreatedAt = time.Now().UTC()

	if s.policy.Mode == schedule.PolicyBuffer {
		return s.createWithBuffer(ctx, b)
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO bookings (patient_name, email, phone, appointment_date, slot_minutes, status, doctor_id, service_id, otp_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		b.PatientName, b.Email, b.Phone, b.Date, int(b.Slot), string(b.Status), b.DoctorID, b.ServiceID, b.OTPVerified, b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return fmt.Errorf("booking: create: %w", err)
	}
	return nil
}

// createWithBuffer inserts only when no active booking sits within the buffer
// window. The NOT EXISTS check alone cannot see a concurrent uncommitted
// insert under READ COMMITTED, so same-date inserts take an advisory
// transaction lock first; two requests inside each other's window then
// serialize and the loser sees the winner's committed row.
func (s *PostgresStore) createWithBuffer(ctx context.Context, b *Booking) error {
	lo := int(b.Slot) - s.policy.BufferMinutes
	hi := int(b.Slot) + s.policy.BufferMinutes

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("booking: create with buffer: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, b.Date.Format("2006-01-02")); err != nil {
		return fmt.Errorf("booking: create with buffer: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (patient_name, email, phone, appointment_date, slot_minutes, status, doctor_id, service_id, otp_verified, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		WHERE NOT EXISTS (
			SELECT 1 FROM bookings
			WHERE appointment_date = $4
			  AND status IN ('pending', 'accepted')
			  AND slot_minutes BETWEEN $11 AND $12
		)
		RETURNING id`,
		b.PatientName, b.Email, b.Phone, b.Date, int(b.Slot), string(b.Status), b.DoctorID, b.ServiceID, b.OTPVerified, b.CreatedAt,
		lo, hi,
	).Scan(&b.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSlotTaken
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return fmt.Errorf("booking: create with buffer: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("booking: create with buffer: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking: get: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) List(ctx context.Context, f ListFilter) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []any{}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Date != nil {
		args = append(args, *f.Date)
		query += fmt.Sprintf(" AND appointment_date = $%d", len(args))
	}
	if f.DoctorID != nil {
		args = append(args, *f.DoctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("booking: list: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (s *PostgresStore) ActiveSlots(ctx context.Context, date time.Time, doctorID *int64) ([]schedule.Slot, error) {
	query := `SELECT slot_minutes FROM bookings WHERE appointment_date = $1 AND status IN ('pending', 'accepted')`
	args := []any{date}
	if doctorID != nil {
		args = append(args, *doctorID)
		query += " AND doctor_id = $2"
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("booking: active slots: %w", err)
	}
	defer rows.Close()

	var out []schedule.Slot
	for rows.Next() {
		var minutes int
		if err := rows.Scan(&minutes); err != nil {
			return nil, fmt.Errorf("booking: active slots scan: %w", err)
		}
		out = append(out, schedule.Slot(minutes))
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateStatusCAS(ctx context.Context, id int64, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings SET status = $3 WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return false, fmt.Errorf("booking: update status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) CompleteExpired(ctx context.Context, today time.Time, now schedule.Slot) (int64, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings SET status = 'completed'
		WHERE status IN ('pending', 'accepted')
		  AND (appointment_date < $1 OR (appointment_date = $1 AND slot_minutes < $2))`,
		today, int(now),
	)
	if err != nil {
		return 0, fmt.Errorf("booking: complete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) ListReminderDue(ctx context.Context, date time.Time) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'accepted' AND appointment_date = $1 AND reminder_sent = false
		ORDER BY slot_minutes ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("booking: list reminder due: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (s *PostgresStore) MarkReminderSent(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `UPDATE bookings SET reminder_sent = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("booking: mark reminder sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ClearDoctor(ctx context.Context, doctorID int64) error {
	if _, err := s.db.Exec(ctx, `UPDATE bookings SET doctor_id = NULL WHERE doctor_id = $1`, doctorID); err != nil {
		return fmt.Errorf("booking: clear doctor: %w", err)
	}
	return nil
}

func (s *PostgresStore) ClearService(ctx context.Context, serviceID int64) error {
	if _, err := s.db.Exec(ctx, `UPDATE bookings SET service_id = NULL WHERE service_id = $1`, serviceID); err != nil {
		return fmt.Errorf("booking: clear service: %w", err)
	}
	return nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var minutes int
	var status string
	if err := row.Scan(&b.ID, &b.PatientName, &b.Email, &b.Phone, &b.Date, &minutes, &status, &b.DoctorID, &b.ServiceID, &b.OTPVerified, &b.ReminderSent, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Slot = schedule.Slot(minutes)
	b.Status = Status(status)
	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]Booking, error) {
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("booking: scan: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
