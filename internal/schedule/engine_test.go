package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookings struct {
	slots []Slot
	err   error

	gotDate   time.Time
	gotDoctor *int64
}

func (s *stubBookings) ActiveSlots(_ context.Context, date time.Time, doctorID *int64) ([]Slot, error) {
	s.gotDate = date
	s.gotDoctor = doctorID
	return s.slots, s.err
}

type stubDoctors struct {
	sched DoctorSchedule
	err   error
}

func (s *stubDoctors) Schedule(context.Context, int64) (DoctorSchedule, error) {
	return s.sched, s.err
}

func testGrid(t *testing.T) Grid {
	t.Helper()
	return MustGrid("10:00", "12:00", 30*time.Minute)
}

// Monday
var openDay = time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)

func TestAvailabilityPartitionsGrid(t *testing.T) {
	src := &stubBookings{slots: []Slot{Slot(660), Slot(600)}}
	engine := NewEngine(testGrid(t), src, nil)

	res, err := engine.Availability(context.Background(), openDay, nil)
	require.NoError(t, err)

	assert.False(t, res.Closed)
	assert.Equal(t, []Slot{Slot(600), Slot(660)}, res.Booked, "grid order, not insertion order")
	assert.Equal(t, []Slot{Slot(630), Slot(690)}, res.Available)

	// booked and available partition the grid
	assert.Equal(t, engine.Grid().Len(), len(res.Booked)+len(res.Available))
}

func TestAvailabilityEmptyDay(t *testing.T) {
	engine := NewEngine(testGrid(t), &stubBookings{}, nil)

	res, err := engine.Availability(context.Background(), openDay, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Booked)
	assert.Equal(t, engine.Grid().Slots(), res.Available)
}

func TestAvailabilitySundayClosed(t *testing.T) {
	sunday := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	// Bookings on file must not change the closed shape.
	engine := NewEngine(testGrid(t), &stubBookings{slots: []Slot{Slot(600)}}, nil)

	res, err := engine.Availability(context.Background(), sunday, nil)
	require.NoError(t, err)

	assert.True(t, res.Closed)
	assert.Equal(t, "closed on Sunday", res.Reason)
	assert.Empty(t, res.Available)
	assert.Equal(t, engine.Grid().Slots(), res.Booked)
}

func TestAvailabilityInactiveDoctor(t *testing.T) {
	docs := &stubDoctors{sched: DoctorSchedule{Name: "Dr. Priya", Active: false}}
	engine := NewEngine(testGrid(t), &stubBookings{}, docs)

	id := int64(3)
	res, err := engine.Availability(context.Background(), openDay, &id)
	require.NoError(t, err)

	assert.True(t, res.Closed)
	assert.Contains(t, res.Reason, "Dr. Priya")
	assert.NotEqual(t, "closed on Sunday", res.Reason)
	assert.Empty(t, res.Available)
}

func TestAvailabilityDoctorOffDay(t *testing.T) {
	days, err := ParseWeekdays("Tue,Thu")
	require.NoError(t, err)
	docs := &stubDoctors{sched: DoctorSchedule{Name: "Dr. Priya", Active: true, Days: days}}
	engine := NewEngine(testGrid(t), &stubBookings{}, docs)

	id := int64(3)
	res, err := engine.Availability(context.Background(), openDay, &id)
	require.NoError(t, err)

	assert.True(t, res.Closed)
	assert.Contains(t, res.Reason, "Monday")
}

func TestAvailabilityDoctorEmptyDaysMeansAllDays(t *testing.T) {
	docs := &stubDoctors{sched: DoctorSchedule{Name: "Dr. Priya", Active: true}}
	src := &stubBookings{}
	engine := NewEngine(testGrid(t), src, docs)

	id := int64(3)
	res, err := engine.Availability(context.Background(), openDay, &id)
	require.NoError(t, err)

	assert.False(t, res.Closed)
	require.NotNil(t, src.gotDoctor)
	assert.Equal(t, id, *src.gotDoctor, "query must stay doctor-scoped")
}

func TestAvailabilityDoctorLookupError(t *testing.T) {
	docs := &stubDoctors{err: errors.New("doctor not found")}
	engine := NewEngine(testGrid(t), &stubBookings{}, docs)

	id := int64(99)
	_, err := engine.Availability(context.Background(), openDay, &id)
	assert.Error(t, err)
}

func TestBufferConflictBoundaries(t *testing.T) {
	existing := Slot(600) // 10:00
	tests := []struct {
		candidate string
		conflict  bool
	}{
		{"10:15", true},
		{"10:30", true}, // boundary inclusive
		{"10:31", false},
		{"09:30", true}, // boundary inclusive
		{"09:29", false},
		{"10:00", true},
	}
	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			candidate, err := ParseSlot(tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.conflict, BufferConflict(existing, candidate, 30))
		})
	}
}
