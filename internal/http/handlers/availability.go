package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/surabicare/clinic-scheduler/internal/schedule"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// AvailabilityHandler serves the slot availability lookup.
type AvailabilityHandler struct {
	engine *schedule.Engine
	logger *logging.Logger
}

func NewAvailabilityHandler(engine *schedule.Engine, logger *logging.Logger) *AvailabilityHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityHandler{engine: engine, logger: logger}
}

// Get returns booked and free slots for a date.
// GET /availability?date=YYYY-MM-DD[&doctor_id=N]
func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		badRequest(w, "date query parameter is required")
		return
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		badRequest(w, "date must be YYYY-MM-DD")
		return
	}

	var doctorID *int64
	if v := r.URL.Query().Get("doctor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(w, "doctor_id must be an integer")
			return
		}
		doctorID = &id
	}

	result, err := h.engine.Availability(r.Context(), date, doctorID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
