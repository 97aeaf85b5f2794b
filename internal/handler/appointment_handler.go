package handler

import (
	"net/http"

	"heart-clinic/internal/api"
	"heart-clinic/internal/middleware"
	"heart-clinic/internal/model"
)

// ScheduleAppointment books for the caller when the caller is a patient,
// whatever username the body names.
func (h *Handler) ScheduleAppointment(w http.ResponseWriter, r *http.Request) {
	var req api.ScheduleRequest
	if !decode(w, r, &req) {
		return
	}
	if c, ok := middleware.ClaimsFrom(r.Context()); ok && c.Role == model.RolePatient {
		req.PatientUsername = c.Subject
	}
	if err := h.svc.Schedule(r.Context(), req); err != nil {
		h.fail(w, r, err, resultBody)
		return
	}
	writeJSON(w, http.StatusOK, api.Result{Success: true})
}

func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.svc.Appointments(r.Context())
	if err != nil {
		h.fail(w, r, err, errorBody)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

func (h *Handler) AddPrescription(w http.ResponseWriter, r *http.Request) {
	var req api.PrescriptionRequest
	if !decode(w, r, &req) {
		return
	}
	if c, ok := middleware.ClaimsFrom(r.Context()); ok && req.DoctorUsername == "" {
		req.DoctorUsername = c.Subject
	}
	if err := h.svc.AddPrescription(r.Context(), req); err != nil {
		h.fail(w, r, err, resultBody)
		return
	}
	writeJSON(w, http.StatusOK, api.Result{Success: true})
}

func (h *Handler) Prescriptions(w http.ResponseWriter, r *http.Request) {
	rx, err := h.svc.Prescriptions(r.Context())
	if err != nil {
		h.fail(w, r, err, errorBody)
		return
	}
	writeJSON(w, http.StatusOK, rx)
}
