// Package handler serves the clinic backend's JSON contract over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"heart-clinic/internal/clinic"
	"heart-clinic/internal/logger"
	"heart-clinic/internal/middleware"
	"heart-clinic/internal/model"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc    *clinic.Service
	secret string
	log    *logger.Logger
}

func New(svc *clinic.Service, secret string, log *logger.Logger) *Handler {
	return &Handler{svc: svc, secret: secret, log: log}
}

// Routes builds the router. Login is rate limited and open; every other
// clinic endpoint needs a bearer token from Login.
func (h *Handler) Routes(m *middleware.Metrics, rl *middleware.RateLimiter, origins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logging(h.log), m.Middleware)

	authed := middleware.BearerAuth(h.secret)
	doctor := middleware.BearerAuth(h.secret, model.RoleDoctor)

	r.Handle("/login", middleware.RateLimitHTTP(rl, nil)(http.HandlerFunc(h.Login))).Methods(http.MethodPost)
	r.Handle("/predict_api", doctor(http.HandlerFunc(h.Predict))).Methods(http.MethodPost)
	r.Handle("/get_records", authed(http.HandlerFunc(h.Records))).Methods(http.MethodGet)
	r.Handle("/schedule_appointment", authed(http.HandlerFunc(h.ScheduleAppointment))).Methods(http.MethodPost)
	r.Handle("/get_appointments", authed(http.HandlerFunc(h.Appointments))).Methods(http.MethodGet)
	r.Handle("/add_prescription", doctor(http.HandlerFunc(h.AddPrescription))).Methods(http.MethodPost)
	r.Handle("/get_prescriptions", authed(http.HandlerFunc(h.Prescriptions))).Methods(http.MethodGet)
	r.Handle("/chat", authed(http.HandlerFunc(h.Chat))).Methods(http.MethodPost)

	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Readyz).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.svc.Ready(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "db": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "db": "ok"})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// fail maps a service error onto a status; validation messages reach the
// client, anything else is logged and hidden.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, encode func(msg string) any) {
	code, msg := http.StatusInternalServerError, "internal error"
	var v *clinic.ValidationError
	if errors.As(err, &v) {
		code, msg = http.StatusBadRequest, v.Msg
	} else {
		h.log.WithContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeJSON(w, code, encode(msg))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
