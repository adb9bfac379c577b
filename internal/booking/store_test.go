package booking

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surabicare/clinic-scheduler/internal/schedule"
)

// anyArgs builds n AnyArg matchers; pgxmock requires the argument count of an
// expectation to match the call even when the values do not matter.
func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func newMockStore(t *testing.T, policy ConflictPolicy) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock, policy), mock
}

func TestPostgresCreate(t *testing.T) {
	store, mock := newMockStore(t, ConflictPolicy{})

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs("Asha Rao", "asha@example.com", "9876543210", pgxmock.AnyArg(), 630, "pending", pgxmock.AnyArg(), pgxmock.AnyArg(), true, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	b := &Booking{
		PatientName: "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		Date:        time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Slot:        630,
		OTPVerified: true,
	}
	require.NoError(t, store.Create(context.Background(), b))
	assert.Equal(t, int64(7), b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t, ConflictPolicy{})

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(anyArgs(10)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "bookings_active_slot_key"})

	err := store.Create(context.Background(), &Booking{
		PatientName: "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		Date:        time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Slot:        630,
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateBuffer(t *testing.T) {
	store, mock := newMockStore(t, ConflictPolicy{Mode: schedule.PolicyBuffer, BufferMinutes: 30})

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs("2026-09-02").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(anyArgs(12)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectCommit()

	b := &Booking{
		PatientName: "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		Date:        time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Slot:        615,
	}
	require.NoError(t, store.Create(context.Background(), b))
	assert.Equal(t, int64(11), b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateBufferConflict(t *testing.T) {
	store, mock := newMockStore(t, ConflictPolicy{Mode: schedule.PolicyBuffer, BufferMinutes: 30})

	// The guarded insert matches no row when the window is occupied.
	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(anyArgs(12)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := store.Create(context.Background(), &Booking{
		PatientName: "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		Date:        time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Slot:        615,
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateBufferUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t, ConflictPolicy{Mode: schedule.PolicyBuffer, BufferMinutes: 30})

	// A raced identical insert can land between the window check and our
	// write; the unique index rejection must still read as a slot conflict.
	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(anyArgs(12)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "bookings_active_slot_key"})
	mock.ExpectRollback()

	err := store.Create(context.Background(), &Booking{
		PatientName: "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "9876543210",
		Date:        time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		Slot:        615,
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateStatusCAS(t *testing.T) {
	store, mock := newMockStore(t, ConflictPolicy{})

	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(int64(7), "pending", "accepted").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := store.UpdateStatusCAS(context.Background(), 7, StatusPending, StatusAccepted)
	require.NoError(t, err)
	assert.True(t, ok)

	// A raced booking no longer matches the expected status.
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(int64(7), "pending", "rejected").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	ok, err = store.UpdateStatusCAS(context.Background(), 7, StatusPending, StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresActiveSlotsDoctorScoped(t *testing.T) {
	store, mock := newMockStore(t, ConflictPolicy{})
	date := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	doctorID := int64(3)

	mock.ExpectQuery("SELECT slot_minutes FROM bookings").
		WithArgs(date, doctorID).
		WillReturnRows(pgxmock.NewRows([]string{"slot_minutes"}).AddRow(600).AddRow(660))

	slots, err := store.ActiveSlots(context.Background(), date, &doctorID)
	require.NoError(t, err)
	assert.Equal(t, []schedule.Slot{600, 660}, slots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteExpired(t *testing.T) {
	store, mock := newMockStore(t, ConflictPolicy{})
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE bookings SET status = 'completed'").
		WithArgs(today, 540).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := store.CompleteExpired(context.Background(), today, 540)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetNotFound(t *testing.T) {
	store, mock := newMockStore(t, ConflictPolicy{})

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id").
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "patient_name", "email", "phone", "appointment_date", "slot_minutes",
			"status", "doctor_id", "service_id", "otp_verified", "reminder_sent", "created_at",
		}))

	_, err := store.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClearDoctor(t *testing.T) {
	store, mock := newMockStore(t, ConflictPolicy{})

	mock.ExpectExec("UPDATE bookings SET doctor_id = NULL").
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	require.NoError(t, store.ClearDoctor(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
