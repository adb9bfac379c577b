package doctors

import (
	"context"
	"sort"
	"sync"
	"time"
)

// BookingUnlinker clears doctor references on existing bookings. In Postgres
// the foreign key does this; the in-memory store needs the hook.
type BookingUnlinker interface {
	ClearDoctor(ctx context.Context, doctorID int64) error
}

// MemoryStore is an in-memory Store for dev mode and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	doctors  map[int64]Doctor
	unlinker BookingUnlinker
}

// NewMemoryStore creates an empty in-memory doctor store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, doctors: make(map[int64]Doctor)}
}

// SetBookingUnlinker wires the hook that clears booking references on delete.
func (s *MemoryStore) SetBookingUnlinker(u BookingUnlinker) { s.unlinker = u }

func (s *MemoryStore) Create(_ context.Context, d *Doctor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.nextID
	s.nextID++
	d.CreatedAt = time.Now().UTC()
	s.doctors[d.ID] = *d
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, d *Doctor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.doctors[d.ID]
	if !ok {
		return ErrNotFound
	}
	d.CreatedAt = existing.CreatedAt
	s.doctors[d.ID] = *d
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.doctors[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.doctors, id)
	unlinker := s.unlinker
	s.mu.Unlock()

	if unlinker != nil {
		return unlinker.ClearDoctor(ctx, id)
	}
	return nil
}
