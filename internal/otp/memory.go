package otp

import (
	"context"
	"sync"
)

// MemoryStore is an in-process challenge store for dev mode and tests. The
// single mutex gives the same upsert/mutate atomicity the Redis store gets
// from SET and WATCH.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]Challenge
}

// NewMemoryStore creates an empty in-memory challenge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{challenges: make(map[string]Challenge)}
}

func (s *MemoryStore) Upsert(_ context.Context, ch *Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[ch.Contact] = *ch
	return nil
}

func (s *MemoryStore) Get(_ context.Context, contact string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[contact]
	if !ok {
		return nil, ErrNotFound
	}
	return &ch, nil
}

func (s *MemoryStore) Mutate(_ context.Context, contact string, fn MutateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[contact]
	if !ok {
		return ErrNotFound
	}
	persist, result := fn(&ch)
	if persist {
		s.challenges[contact] = ch
	}
	return result
}
