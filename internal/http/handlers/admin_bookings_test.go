package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAcceptFlow(t *testing.T) {
	e := newEnv(t)
	h := e.router()
	id := createBooking(t, e, h, "10:30")

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/admin/bookings/%d/accept", id), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		StatusChanged bool `json:"status_changed"`
		NotifySent    bool `json:"notify_sent"`
		Booking       struct {
			Status string `json:"status"`
		} `json:"booking"`
	}
	decodeBody(t, rec, &resp)
	assert.True(t, resp.StatusChanged)
	assert.True(t, resp.NotifySent)
	assert.Equal(t, "accepted", resp.Booking.Status)

	// Repeating the accept is a quiet no-op.
	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/admin/bookings/%d/accept", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.False(t, resp.StatusChanged)
}

func TestAdminRejectAfterTerminal(t *testing.T) {
	e := newEnv(t)
	h := e.router()
	id := createBooking(t, e, h, "10:30")

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/admin/bookings/%d/reject", id),
		map[string]any{"reason": "fully booked"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/admin/bookings/%d/accept", id), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "invalid_transition", resp.Code)
}

func TestAdminListFilters(t *testing.T) {
	e := newEnv(t)
	h := e.router()
	first := createBooking(t, e, h, "10:00")
	createBooking(t, e, h, "10:30")

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/admin/bookings/%d/accept", first), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/admin/bookings?status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int `json:"count"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 1, resp.Count)

	rec = doJSON(t, h, http.MethodGet, "/admin/bookings?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminBulkAccept(t *testing.T) {
	e := newEnv(t)
	h := e.router()
	ids := []int64{
		createBooking(t, e, h, "10:00"),
		createBooking(t, e, h, "10:30"),
	}

	rec := doJSON(t, h, http.MethodPost, "/admin/bookings/bulk/accept",
		map[string]any{"ids": append(ids, 404)})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Changed    int `json:"changed"`
		Skipped    int `json:"skipped"`
		NotifySent int `json:"notify_sent"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp.Changed)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, 2, resp.NotifySent)
}

func TestAdminSweepEndpoint(t *testing.T) {
	e := newEnv(t)
	h := e.router()

	rec := doJSON(t, h, http.MethodPost, "/admin/bookings/sweep", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Completed int64 `json:"completed"`
	}
	decodeBody(t, rec, &resp)
	assert.Zero(t, resp.Completed)
}

func TestAdminNotFound(t *testing.T) {
	e := newEnv(t)
	h := e.router()

	rec := doJSON(t, h, http.MethodGet, "/admin/bookings/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
