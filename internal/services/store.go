package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store is the persistence contract for clinic services.
type Store interface {
	Create(ctx context.Context, svc *Service) error
	Get(ctx context.Context, id int64) (*Service, error)
	List(ctx context.Context) ([]Service, error)
	Update(ctx context.Context, svc *Service) error
	Delete(ctx context.Context, id int64) error
}

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists services in Postgres.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a service store over a pgx pool or mock.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	svc.CreatedAt = time.Now().UTC()
	err := s.db.QueryRow(ctx, `
		INSERT INTO services (name, duration_minutes, cost_cents, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		svc.Name, svc.DurationMinutes, svc.CostCents, svc.Active, svc.CreatedAt,
	).Scan(&svc.ID)
	if err != nil {
		return fmt.Errorf("services: create: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*Service, error) {
	var svc Service
	err := s.db.QueryRow(ctx, `
		SELECT id, name, duration_minutes, cost_cents, active, created_at
		FROM services WHERE id = $1`, id,
	).Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.CostCents, &svc.Active, &svc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("services: get: %w", err)
	}
	return &svc, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Service, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, duration_minutes, cost_cents, active, created_at
		FROM services ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("services: list: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.CostCents, &svc.Active, &svc.CreatedAt); err != nil {
			return nil, fmt.Errorf("services: list scan: %w", err)
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE services
		SET name = $2, duration_minutes = $3, cost_cents = $4, active = $5
		WHERE id = $1`,
		svc.ID, svc.Name, svc.DurationMinutes, svc.CostCents, svc.Active,
	)
	if err != nil {
		return fmt.Errorf("services: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("services: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
