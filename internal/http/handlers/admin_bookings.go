package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/surabicare/clinic-scheduler/internal/booking"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// AdminBookingHandler serves the staff booking endpoints: listing, the
// status transitions, bulk actions, and the batch jobs run on demand.
type AdminBookingHandler struct {
	svc    *booking.Service
	logger *logging.Logger
}

func NewAdminBookingHandler(svc *booking.Service, logger *logging.Logger) *AdminBookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminBookingHandler{svc: svc, logger: logger}
}

// List returns bookings newest first, optionally filtered by status, date,
// or doctor.
// GET /admin/bookings
func (h *AdminBookingHandler) List(w http.ResponseWriter, r *http.Request) {
	var f booking.ListFilter
	if v := r.URL.Query().Get("status"); v != "" {
		st := booking.Status(v)
		if !st.Valid() {
			badRequest(w, "unknown status")
			return
		}
		f.Status = &st
	}
	if v := r.URL.Query().Get("date"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			badRequest(w, "date must be YYYY-MM-DD")
			return
		}
		f.Date = &date
	}
	if v := r.URL.Query().Get("doctor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(w, "doctor_id must be an integer")
			return
		}
		f.DoctorID = &id
	}

	list, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": list, "count": len(list)})
}

// Get returns one booking.
// GET /admin/bookings/{id}
func (h *AdminBookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// transitionResponse reports the partial-success shape of a staff action.
type transitionResponse struct {
	Booking       *booking.Booking `json:"booking"`
	StatusChanged bool             `json:"status_changed"`
	NotifySent    bool             `json:"notify_sent"`
	NotifyError   string           `json:"notify_error,omitempty"`
}

// Accept confirms a pending booking.
// POST /admin/bookings/{id}/accept
func (h *AdminBookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64) (*booking.TransitionResult, error) {
		return h.svc.Accept(r.Context(), id)
	})
}

type rejectBody struct {
	Reason string `json:"reason"`
}

// Reject declines a pending booking with an optional reason.
// POST /admin/bookings/{id}/reject
func (h *AdminBookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var body rejectBody
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &body); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}
	h.transition(w, r, func(id int64) (*booking.TransitionResult, error) {
		return h.svc.Reject(r.Context(), id, body.Reason)
	})
}

// Cancel cancels a pending or accepted booking.
// POST /admin/bookings/{id}/cancel
func (h *AdminBookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64) (*booking.TransitionResult, error) {
		return h.svc.Cancel(r.Context(), id)
	})
}

// Complete manually closes out a booking.
// POST /admin/bookings/{id}/complete
func (h *AdminBookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id int64) (*booking.TransitionResult, error) {
		return h.svc.Complete(r.Context(), id)
	})
}

func (h *AdminBookingHandler) transition(w http.ResponseWriter, r *http.Request, apply func(int64) (*booking.TransitionResult, error)) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	res, err := apply(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp := transitionResponse{
		Booking:       res.Booking,
		StatusChanged: res.StatusChanged,
		NotifySent:    res.StatusChanged && res.NotifyErr == nil,
	}
	if res.NotifyErr != nil {
		resp.NotifySent = false
		resp.NotifyError = res.NotifyErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

type bulkBody struct {
	IDs    []int64 `json:"ids"`
	Reason string  `json:"reason,omitempty"`
}

// BulkAccept confirms a batch of bookings.
// POST /admin/bookings/bulk/accept
func (h *AdminBookingHandler) BulkAccept(w http.ResponseWriter, r *http.Request) {
	var body bulkBody
	if err := decodeJSON(r, &body); err != nil || len(body.IDs) == 0 {
		badRequest(w, "ids is required")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.BulkAccept(r.Context(), body.IDs))
}

// BulkReject declines a batch of bookings with a shared reason.
// POST /admin/bookings/bulk/reject
func (h *AdminBookingHandler) BulkReject(w http.ResponseWriter, r *http.Request) {
	var body bulkBody
	if err := decodeJSON(r, &body); err != nil || len(body.IDs) == 0 {
		badRequest(w, "ids is required")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.BulkReject(r.Context(), body.IDs, body.Reason))
}

// Resend re-sends the status notification without changing state.
// POST /admin/bookings/{id}/resend
func (h *AdminBookingHandler) Resend(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	if err := h.svc.ResendNotification(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sent": true})
}

// Sweep runs the completion sweep immediately.
// POST /admin/bookings/sweep
func (h *AdminBookingHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.CompleteExpired(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completed": n})
}

// Reminders runs the reminder batch immediately.
// POST /admin/bookings/reminders
func (h *AdminBookingHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.SendReminders(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AdminBookingHandler) bookingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid booking id")
		return 0, false
	}
	return id, true
}
