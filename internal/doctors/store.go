package doctors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/surabicare/clinic-scheduler/internal/schedule"
)

// Store is the persistence contract for doctors.
type Store interface {
	Create(ctx context.Context, d *Doctor) error
	Get(ctx context.Context, id int64) (*Doctor, error)
	List(ctx context.Context) ([]Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	// Delete removes the doctor. Booking references are cleared, not cascaded.
	Delete(ctx context.Context, id int64) error
}

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists doctors in Postgres. The bookings foreign key is
// declared ON DELETE SET NULL, so Delete leaves bookings in place with a
// cleared reference.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a doctor store over a pgx pool or mock.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d *Doctor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	d.CreatedAt = time.Now().UTC()
	err := s.db.QueryRow(ctx, `
		INSERT INTO doctors (name, specialization, email, phone, photo_url, active, weekdays, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		d.Name, d.Specialization, d.Email, d.Phone, d.PhotoURL, d.Active, d.Days.String(), d.CreatedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("doctors: create: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*Doctor, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, specialization, email, phone, photo_url, active, weekdays, created_at
		FROM doctors WHERE id = $1`, id)
	d, err := scanDoctor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: get: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Doctor, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, specialization, email, phone, photo_url, active, weekdays, created_at
		FROM doctors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("doctors: list scan: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, d *Doctor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE doctors
		SET name = $2, specialization = $3, email = $4, phone = $5, photo_url = $6, active = $7, weekdays = $8
		WHERE id = $1`,
		d.ID, d.Name, d.Specialization, d.Email, d.Phone, d.PhotoURL, d.Active, d.Days.String(),
	)
	if err != nil {
		return fmt.Errorf("doctors: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("doctors: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var weekdays string
	if err := row.Scan(&d.ID, &d.Name, &d.Specialization, &d.Email, &d.Phone, &d.PhotoURL, &d.Active, &weekdays, &d.CreatedAt); err != nil {
		return nil, err
	}
	days, err := schedule.ParseWeekdays(weekdays)
	if err != nil {
		return nil, err
	}
	d.Days = days
	return &d, nil
}
