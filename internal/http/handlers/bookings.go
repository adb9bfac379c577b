package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/surabicare/clinic-scheduler/internal/booking"
	"github.com/surabicare/clinic-scheduler/internal/notify"
	"github.com/surabicare/clinic-scheduler/internal/token"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// BookingHandler serves the public booking endpoints: creation and the
// token-protected confirmation artifacts.
type BookingHandler struct {
	svc    *booking.Service
	auth   *token.Authorizer
	clinic notify.ClinicInfo
	logger *logging.Logger
}

func NewBookingHandler(svc *booking.Service, auth *token.Authorizer, clinic notify.ClinicInfo, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{svc: svc, auth: auth, clinic: clinic, logger: logger}
}

type createBookingResponse struct {
	Booking   *booking.Booking `json:"booking"`
	AlertSent bool             `json:"alert_sent"`
}

// Create submits a booking request. The contact must hold a verified
// challenge before this is called.
// POST /bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in booking.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	res, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, createBookingResponse{
		Booking:   res.Booking,
		AlertSent: res.AlertErr == nil,
	})
}

// greetingResponse is the confirmation card behind the signed link.
type greetingResponse struct {
	Clinic      string `json:"clinic"`
	Location    string `json:"location,omitempty"`
	PatientName string `json:"patient_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	DoctorName  string `json:"doctor_name,omitempty"`
	Status      string `json:"status"`
}

// Greeting resolves the signed confirmation link.
// GET /bookings/{id}/greeting?token=...
func (h *BookingHandler) Greeting(w http.ResponseWriter, r *http.Request) {
	b, ok := h.authorize(w, r)
	if !ok {
		return
	}
	resp := greetingResponse{
		Clinic:      h.clinic.Name,
		Location:    h.clinic.Location,
		PatientName: b.PatientName,
		Date:        b.Date.Format("2006-01-02"),
		Time:        b.TimeDisplay(),
		Status:      string(b.Status),
	}
	if appt := h.svc.AppointmentView(r.Context(), b); appt.DoctorName != "" {
		resp.DoctorName = appt.DoctorName
	}
	writeJSON(w, http.StatusOK, resp)
}

// QR renders the confirmation QR for an authorized booking as a PNG.
// GET /bookings/{id}/qr?token=...
func (h *BookingHandler) QR(w http.ResponseWriter, r *http.Request) {
	b, ok := h.authorize(w, r)
	if !ok {
		return
	}
	tok := r.URL.Query().Get("token")
	png, err := notify.ConfirmationQR(h.svc.GreetingURL(b.ID, tok))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// authorize checks the signed token for the booking in the URL. Every denial
// looks the same to the caller; the distinct reason only reaches the log.
func (h *BookingHandler) authorize(w http.ResponseWriter, r *http.Request) (*booking.Booking, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid booking id")
		return nil, false
	}

	decision := h.auth.Authorize(id, r.URL.Query().Get("token"))
	if !decision.Allowed {
		h.logger.Warn("confirmation link denied", "booking_id", id, "reason", string(decision.Reason))
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "access denied", Code: "access_denied"})
		return nil, false
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	return b, true
}
