package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/surabicare/clinic-scheduler/internal/schedule"
)

// MemoryStore is an in-memory Store for tests and single-process runs. The
// conflict check and insert happen under one lock, mirroring the atomicity
// the Postgres store gets from its unique index.
type MemoryStore struct {
	mu       sync.Mutex
	policy   ConflictPolicy
	nextID   int64
	bookings map[int64]*Booking
}

func NewMemoryStore(policy ConflictPolicy) *MemoryStore {
	if policy.Mode == "" {
		policy.Mode = schedule.PolicySlotGrid
	}
	return &MemoryStore{
		policy:   policy,
		nextID:   1,
		bookings: make(map[int64]*Booking),
	}
}

func (s *MemoryStore) Create(ctx context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bookings {
		if !existing.Status.Active() || !sameDay(existing.Date, b.Date) {
			continue
		}
		if s.conflicts(existing, b) {
			return ErrSlotTaken
		}
	}

	b.ID = s.nextID
	s.nextID++
	b.Status = StatusPending
	b.CreatedAt = time.Now().UTC()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *MemoryStore) conflicts(existing, candidate *Booking) bool {
	if s.policy.Mode == schedule.PolicyBuffer {
		return schedule.BufferConflict(existing.Slot, candidate.Slot, s.policy.BufferMinutes)
	}
	if existing.Slot != candidate.Slot {
		return false
	}
	return doctorKey(existing.DoctorID) == doctorKey(candidate.DoctorID)
}

func doctorKey(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, f ListFilter) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Booking
	for _, b := range s.bookings {
		if f.Status != nil && b.Status != *f.Status {
			continue
		}
		if f.Date != nil && !sameDay(b.Date, *f.Date) {
			continue
		}
		if f.DoctorID != nil && (b.DoctorID == nil || *b.DoctorID != *f.DoctorID) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) ActiveSlots(ctx context.Context, date time.Time, doctorID *int64) ([]schedule.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []schedule.Slot
	for _, b := range s.bookings {
		if !b.Status.Active() || !sameDay(b.Date, date) {
			continue
		}
		if doctorID != nil && (b.DoctorID == nil || *b.DoctorID != *doctorID) {
			continue
		}
		out = append(out, b.Slot)
	}
	return out, nil
}

func (s *MemoryStore) UpdateStatusCAS(ctx context.Context, id int64, from, to Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (s *MemoryStore) CompleteExpired(ctx context.Context, today time.Time, now schedule.Slot) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, b := range s.bookings {
		if !b.Status.Active() {
			continue
		}
		past := b.Date.Before(truncateDay(today)) || (sameDay(b.Date, today) && b.Slot < now)
		if past {
			b.Status = StatusCompleted
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListReminderDue(ctx context.Context, date time.Time) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Booking
	for _, b := range s.bookings {
		if b.Status == StatusAccepted && !b.ReminderSent && sameDay(b.Date, date) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (s *MemoryStore) MarkReminderSent(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.ReminderSent = true
	return nil
}

func (s *MemoryStore) ClearDoctor(ctx context.Context, doctorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.DoctorID != nil && *b.DoctorID == doctorID {
			b.DoctorID = nil
		}
	}
	return nil
}

func (s *MemoryStore) ClearService(ctx context.Context, serviceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ServiceID != nil && *b.ServiceID == serviceID {
			b.ServiceID = nil
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
