package handlers

import (
	"net/http"
	"strings"

	"github.com/surabicare/clinic-scheduler/internal/otp"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// OTPHandler serves the challenge-response verification endpoints.
type OTPHandler struct {
	svc    *otp.Service
	logger *logging.Logger
}

func NewOTPHandler(svc *otp.Service, logger *logging.Logger) *OTPHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &OTPHandler{svc: svc, logger: logger}
}

type otpRequestBody struct {
	Contact string `json:"contact"`
}

type otpVerifyBody struct {
	Contact string `json:"contact"`
	Code    string `json:"code"`
}

// Request issues a fresh challenge and delivers the code.
// POST /otp/request
func (h *OTPHandler) Request(w http.ResponseWriter, r *http.Request) {
	var body otpRequestBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	body.Contact = strings.TrimSpace(body.Contact)
	if body.Contact == "" {
		badRequest(w, "contact is required")
		return
	}

	res, err := h.svc.Request(r.Context(), body.Contact)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	// A failed delivery still leaves a live challenge; report both facts.
	writeJSON(w, http.StatusOK, map[string]any{
		"requested": true,
		"delivered": res.Delivered,
	})
}

// Verify checks a submitted code against the live challenge.
// POST /otp/verify
func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var body otpVerifyBody
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	body.Contact = strings.TrimSpace(body.Contact)
	if body.Contact == "" || strings.TrimSpace(body.Code) == "" {
		badRequest(w, "contact and code are required")
		return
	}

	if err := h.svc.Verify(r.Context(), body.Contact, body.Code); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"verified": true})
}
