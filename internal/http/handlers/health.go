package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes. Backing stores are optional; a nil
// pinger is reported as "disabled" rather than unhealthy.
type HealthHandler struct {
	db    Pinger
	redis Pinger
}

func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Check reports process and dependency health.
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := map[string]string{}
	for name, p := range map[string]Pinger{"postgres": h.db, "redis": h.redis} {
		switch {
		case p == nil:
			deps[name] = "disabled"
		case p.Ping(ctx) != nil:
			deps[name] = "down"
			status = http.StatusServiceUnavailable
		default:
			deps[name] = "ok"
		}
	}

	body := map[string]any{"status": "ok", "dependencies": deps}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}
