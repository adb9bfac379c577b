package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/surabicare/clinic-scheduler/internal/booking"
	"github.com/surabicare/clinic-scheduler/internal/doctors"
	"github.com/surabicare/clinic-scheduler/internal/notify"
	"github.com/surabicare/clinic-scheduler/internal/otp"
	"github.com/surabicare/clinic-scheduler/internal/services"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps domain errors onto HTTP responses. Anything unrecognized is
// a 500 with a generic body; the real error goes to the log only.
func writeError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Code: "validation", Fields: verr.Fields})
		return
	}
	var terr *booking.TransitionError
	if errors.As(err, &terr) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: terr.Error(), Code: "invalid_transition"})
		return
	}

	switch {
	case errors.Is(err, booking.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "that slot is no longer available", Code: "slot_taken"})
	case errors.Is(err, booking.ErrOTPNotVerified):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "contact has not been verified", Code: "otp_required"})
	case errors.Is(err, booking.ErrStaleStatus):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "booking was modified by another action", Code: "stale_status"})
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, doctors.ErrNotFound),
		errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Code: "not_found"})
	case errors.Is(err, otp.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no verification in progress for that contact", Code: "otp_not_found"})
	case errors.Is(err, otp.ErrExpired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "verification code has expired", Code: "otp_expired"})
	case errors.Is(err, otp.ErrAttemptsExhausted):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many incorrect attempts", Code: "otp_attempts_exhausted"})
	case errors.Is(err, otp.ErrInvalidCode):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "incorrect verification code", Code: "otp_invalid_code"})
	default:
		var derr *notify.DeliveryError
		if errors.As(err, &derr) {
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "notification could not be delivered", Code: "delivery_failed"})
			return
		}
		if logger != nil {
			logger.Error("internal error", "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}
