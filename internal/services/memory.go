package services

import (
	"context"
	"sort"
	"sync"
	"time"
)

// BookingUnlinker clears service references on existing bookings when a
// service is removed.
type BookingUnlinker interface {
	ClearService(ctx context.Context, serviceID int64) error
}

// MemoryStore is an in-memory Store for dev mode and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	services map[int64]Service
	unlinker BookingUnlinker
}

// NewMemoryStore creates an empty in-memory service store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, services: make(map[int64]Service)}
}

// SetBookingUnlinker wires the hook that clears booking references on delete.
func (s *MemoryStore) SetBookingUnlinker(u BookingUnlinker) { s.unlinker = u }

func (s *MemoryStore) Create(_ context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	svc.ID = s.nextID
	s.nextID++
	svc.CreatedAt = time.Now().UTC()
	s.services[svc.ID] = *svc
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &svc, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.services[svc.ID]
	if !ok {
		return ErrNotFound
	}
	svc.CreatedAt = existing.CreatedAt
	s.services[svc.ID] = *svc
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.services[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.services, id)
	unlinker := s.unlinker
	s.mu.Unlock()

	if unlinker != nil {
		return unlinker.ClearService(ctx, id)
	}
	return nil
}
