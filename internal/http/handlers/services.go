package handlers

import (
	"net/http"

	"github.com/surabicare/clinic-scheduler/internal/services"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// ServiceHandler serves the treatment catalog.
type ServiceHandler struct {
	store  services.Store
	logger *logging.Logger
}

func NewServiceHandler(store services.Store, logger *logging.Logger) *ServiceHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ServiceHandler{store: store, logger: logger}
}

type servicePayload struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	CostCents       int64  `json:"cost_cents"`
	Active          *bool  `json:"active,omitempty"`
}

// List returns all services.
// GET /services
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": list})
}

// Get returns one service.
// GET /services/{id}
func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	svc, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// Create adds a service.
// POST /admin/services
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.decodeService(w, r, nil)
	if !ok {
		return
	}
	if err := h.store.Create(r.Context(), svc); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

// Update replaces a service's mutable fields.
// PUT /admin/services/{id}
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	svc, ok := h.decodeService(w, r, existing)
	if !ok {
		return
	}
	svc.ID = id
	if err := h.store.Update(r.Context(), svc); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// Delete removes a service, clearing the reference on existing bookings.
// DELETE /admin/services/{id}
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ServiceHandler) decodeService(w http.ResponseWriter, r *http.Request, base *services.Service) (*services.Service, bool) {
	var body servicePayload
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid JSON body")
		return nil, false
	}

	svc := &services.Service{Active: true}
	if base != nil {
		cp := *base
		svc = &cp
	}
	svc.Name = body.Name
	svc.DurationMinutes = body.DurationMinutes
	svc.CostCents = body.CostCents
	if body.Active != nil {
		svc.Active = *body.Active
	}
	if err := svc.Validate(); err != nil {
		badRequest(w, err.Error())
		return nil, false
	}
	return svc, true
}
