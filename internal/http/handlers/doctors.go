package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/surabicare/clinic-scheduler/internal/doctors"
	"github.com/surabicare/clinic-scheduler/internal/schedule"
	"github.com/surabicare/clinic-scheduler/pkg/logging"
)

// DoctorHandler serves the doctor catalog. Listing is public so patients can
// pick a practitioner; mutations sit behind the admin group.
type DoctorHandler struct {
	store  doctors.Store
	logger *logging.Logger
}

func NewDoctorHandler(store doctors.Store, logger *logging.Logger) *DoctorHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DoctorHandler{store: store, logger: logger}
}

// doctorPayload is the wire form. Consulting days travel as "Mon,Wed,Fri";
// empty means every open day.
type doctorPayload struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	PhotoURL       string `json:"photo_url,omitempty"`
	Active         *bool  `json:"active,omitempty"`
	ConsultingDays string `json:"consulting_days,omitempty"`
}

type doctorView struct {
	doctors.Doctor
	ConsultingDays string `json:"consulting_days,omitempty"`
}

func viewDoctor(d doctors.Doctor) doctorView {
	return doctorView{Doctor: d, ConsultingDays: d.Days.String()}
}

// List returns all doctors.
// GET /doctors
func (h *DoctorHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	views := make([]doctorView, 0, len(list))
	for _, d := range list {
		views = append(views, viewDoctor(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctors": views})
}

// Get returns one doctor.
// GET /doctors/{id}
func (h *DoctorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDoctor(*d))
}

// Create adds a doctor.
// POST /admin/doctors
func (h *DoctorHandler) Create(w http.ResponseWriter, r *http.Request) {
	d, ok := h.decodeDoctor(w, r, nil)
	if !ok {
		return
	}
	if err := h.store.Create(r.Context(), d); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewDoctor(*d))
}

// Update replaces a doctor's mutable fields.
// PUT /admin/doctors/{id}
func (h *DoctorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	d, ok := h.decodeDoctor(w, r, existing)
	if !ok {
		return
	}
	d.ID = id
	if err := h.store.Update(r.Context(), d); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDoctor(*d))
}

// Delete removes a doctor. Existing bookings keep their history with the
// doctor reference cleared.
// DELETE /admin/doctors/{id}
func (h *DoctorHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *DoctorHandler) decodeDoctor(w http.ResponseWriter, r *http.Request, base *doctors.Doctor) (*doctors.Doctor, bool) {
	var body doctorPayload
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, "invalid JSON body")
		return nil, false
	}

	d := &doctors.Doctor{Active: true}
	if base != nil {
		cp := *base
		d = &cp
	}
	d.Name = body.Name
	d.Specialization = body.Specialization
	d.Email = body.Email
	d.Phone = body.Phone
	d.PhotoURL = body.PhotoURL
	if body.Active != nil {
		d.Active = *body.Active
	}
	if body.ConsultingDays != "" {
		days, err := schedule.ParseWeekdays(body.ConsultingDays)
		if err != nil {
			badRequest(w, "consulting_days must be a comma-separated weekday list")
			return nil, false
		}
		d.Days = days
	}
	if err := d.Validate(); err != nil {
		badRequest(w, err.Error())
		return nil, false
	}
	return d, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}
