package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/surabicare/clinic-scheduler/internal/booking"
	"github.com/surabicare/clinic-scheduler/internal/clock"
	"github.com/surabicare/clinic-scheduler/internal/doctors"
	"github.com/surabicare/clinic-scheduler/internal/notify"
	"github.com/surabicare/clinic-scheduler/internal/schedule"
	"github.com/surabicare/clinic-scheduler/internal/services"
	"github.com/surabicare/clinic-scheduler/internal/token"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// testNow is the fixed clock instant every handler fixture runs at.
var testNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (c *captureNotifier) Send(_ context.Context, msg notify.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

type openGate struct{}

func (openGate) IsVerified(context.Context, string) (bool, error) { return true, nil }

type env struct {
	bookings *booking.Service
	store    *booking.MemoryStore
	doctors  *doctors.MemoryStore
	services *services.MemoryStore
	engine   *schedule.Engine
	tokens   *token.Authorizer
	notifier *captureNotifier
	clinic   notify.ClinicInfo
	logger   *logging.Logger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := booking.NewMemoryStore(booking.ConflictPolicy{})
	docs := doctors.NewMemoryStore()
	svcs := services.NewMemoryStore()
	notifier := &captureNotifier{}
	grid := schedule.MustGrid("10:00", "18:00", 30*time.Minute)
	clinic := notify.ClinicInfo{Name: "Surabi Dental Care", Location: "Chennai"}
	logger := logging.New("error")

	tokens, err := token.New("handler-test-secret", 0, clock.NewFixed(testNow))
	require.NoError(t, err)

	bsvc := booking.NewService(store, &grid, notifier, tokens, docs, svcs, openGate{}, clinic, booking.Options{
		AdminEmail: "admin@surabicare.example",
		BaseURL:    "https://surabicare.example",
		Clock:      clock.NewFixed(testNow),
		Logger:     logger,
	})
	engine := schedule.NewEngine(grid, store, doctors.NewCalendar(docs))

	return &env{
		bookings: bsvc,
		store:    store,
		doctors:  docs,
		services: svcs,
		engine:   engine,
		tokens:   tokens,
		notifier: notifier,
		clinic:   clinic,
		logger:   logger,
	}
}

// router mounts the handlers under the same paths the production router uses.
func (e *env) router() http.Handler {
	r := chi.NewRouter()
	availability := NewAvailabilityHandler(e.engine, e.logger)
	bookingsH := NewBookingHandler(e.bookings, e.tokens, e.clinic, e.logger)
	admin := NewAdminBookingHandler(e.bookings, e.logger)
	doctorsH := NewDoctorHandler(e.doctors, e.logger)
	servicesH := NewServiceHandler(e.services, e.logger)

	r.Get("/availability", availability.Get)
	r.Post("/bookings", bookingsH.Create)
	r.Get("/bookings/{id}/greeting", bookingsH.Greeting)
	r.Get("/bookings/{id}/qr", bookingsH.QR)
	r.Get("/doctors", doctorsH.List)
	r.Get("/services", servicesH.List)

	r.Route("/admin", func(ar chi.Router) {
		ar.Get("/bookings", admin.List)
		ar.Get("/bookings/{id}", admin.Get)
		ar.Post("/bookings/{id}/accept", admin.Accept)
		ar.Post("/bookings/{id}/reject", admin.Reject)
		ar.Post("/bookings/{id}/cancel", admin.Cancel)
		ar.Post("/bookings/{id}/complete", admin.Complete)
		ar.Post("/bookings/{id}/resend", admin.Resend)
		ar.Post("/bookings/bulk/accept", admin.BulkAccept)
		ar.Post("/bookings/bulk/reject", admin.BulkReject)
		ar.Post("/bookings/sweep", admin.Sweep)
		ar.Post("/bookings/reminders", admin.Reminders)
		ar.Post("/doctors", doctorsH.Create)
		ar.Put("/doctors/{id}", doctorsH.Update)
		ar.Delete("/doctors/{id}", doctorsH.Delete)
		ar.Post("/services", servicesH.Create)
		ar.Put("/services/{id}", servicesH.Update)
		ar.Delete("/services/{id}", servicesH.Delete)
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func createBooking(t *testing.T, e *env, h http.Handler, at string) int64 {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/bookings", map[string]any{
		"patient_name":     "Asha Rao",
		"email":            "asha@example.com",
		"phone":            "9876543210",
		"appointment_date": "2026-09-02",
		"appointment_time": at,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Booking struct {
			ID int64 `json:"id"`
		} `json:"booking"`
	}
	decodeBody(t, rec, &resp)
	return resp.Booking.ID
}
