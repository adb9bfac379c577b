package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBooking(t *testing.T) {
	e := newEnv(t)
	h := e.router()

	rec := doJSON(t, h, http.MethodPost, "/bookings", map[string]any{
		"patient_name":     "Asha Rao",
		"email":            "asha@example.com",
		"phone":            "9876543210",
		"appointment_date": "2026-09-02",
		"appointment_time": "10:30",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Booking struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
			Slot   string `json:"slot"`
		} `json:"booking"`
		AlertSent bool `json:"alert_sent"`
	}
	decodeBody(t, rec, &resp)
	assert.NotZero(t, resp.Booking.ID)
	assert.Equal(t, "pending", resp.Booking.Status)
	assert.True(t, resp.AlertSent)
}

func TestCreateBookingValidation(t *testing.T) {
	e := newEnv(t)
	h := e.router()

	rec := doJSON(t, h, http.MethodPost, "/bookings", map[string]any{
		"patient_name":     "",
		"email":            "asha@example.com",
		"phone":            "12",
		"appointment_date": "2026-09-02",
		"appointment_time": "10:30",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "validation", resp.Code)
	assert.Contains(t, resp.Fields, "patient_name")
	assert.Contains(t, resp.Fields, "phone")
}

func TestCreateBookingConflict(t *testing.T) {
	e := newEnv(t)
	h := e.router()

	createBooking(t, e, h, "10:30")
	rec := doJSON(t, h, http.MethodPost, "/bookings", map[string]any{
		"patient_name":     "Another Patient",
		"email":            "other@example.com",
		"phone":            "9876500000",
		"appointment_date": "2026-09-02",
		"appointment_time": "10:30",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "slot_taken", resp.Code)
}

func TestGreeting(t *testing.T) {
	e := newEnv(t)
	h := e.router()
	id := createBooking(t, e, h, "10:30")

	tok, err := e.tokens.Issue(id)
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodGet,
		fmt.Sprintf("/bookings/%d/greeting?token=%s", id, url.QueryEscape(tok)), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Clinic      string `json:"clinic"`
		PatientName string `json:"patient_name"`
		Time        string `json:"time"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Surabi Dental Care", resp.Clinic)
	assert.Equal(t, "Asha Rao", resp.PatientName)
	assert.Equal(t, "10:30 AM", resp.Time)
}

func TestGreetingDenied(t *testing.T) {
	e := newEnv(t)
	h := e.router()
	id := createBooking(t, e, h, "10:30")
	otherID := createBooking(t, e, h, "11:00")

	tok, err := e.tokens.Issue(otherID)
	require.NoError(t, err)

	cases := []struct {
		name string
		path string
	}{
		{"missing token", fmt.Sprintf("/bookings/%d/greeting", id)},
		{"garbage token", fmt.Sprintf("/bookings/%d/greeting?token=not-a-token", id)},
		{"token for other booking", fmt.Sprintf("/bookings/%d/greeting?token=%s", id, url.QueryEscape(tok))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodGet, tc.path, nil)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			// Every denial shows the same body regardless of cause.
			assert.Contains(t, rec.Body.String(), "access denied")
		})
	}
}

func TestQR(t *testing.T) {
	e := newEnv(t)
	h := e.router()
	id := createBooking(t, e, h, "10:30")

	tok, err := e.tokens.Issue(id)
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodGet,
		fmt.Sprintf("/bookings/%d/qr?token=%s", id, url.QueryEscape(tok)), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/bookings/%d/qr", id), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
