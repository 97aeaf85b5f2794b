// Package portal is the server-rendered clinic web portal. Every page load
// reads the browser's session, runs the access gate, fetches what the page
// needs through the gateway and renders a view model.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"heart-clinic/internal/gate"
	"heart-clinic/internal/gateway"
	"heart-clinic/internal/logger"
	"heart-clinic/internal/middleware"
	"heart-clinic/internal/model"
	"heart-clinic/internal/session"
	"heart-clinic/internal/view"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// User-facing messages.
const (
	ChatFallback         = "Sorry, I'm having trouble connecting to the server."
	MsgUnavailable       = "Unable to connect to the server. Please try again later."
	MsgDeletionNotAvail  = "Deletion is not available yet."
	MsgTooManyLogins     = "Too many login attempts. Please wait a moment and try again."
	MsgInvalidRole       = "Please select a valid role"
	MsgRecordNotFound    = "Record not found! ID: "
	MsgAppointmentBooked = "Appointment scheduled successfully!"
	MsgPrescriptionAdded = "Prescription added successfully!"
)

// notices are selected by the ?notice= query parameter after a redirect.
var notices = map[string]string{
	"deletion":   MsgDeletionNotAvail,
	"scheduled":  MsgAppointmentBooked,
	"prescribed": MsgPrescriptionAdded,
}

type Server struct {
	gw       gateway.Gateway
	sessions *session.Manager
	opts     view.Options
	log      *logger.Logger
	tmpl     map[string]*template.Template
}

func New(gw gateway.Gateway, sessions *session.Manager, opts view.Options, log *logger.Logger) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{gw: gw, sessions: sessions, opts: opts, log: log, tmpl: tmpl}, nil
}

// pageHandler serves a page that has already passed the gate.
type pageHandler func(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision)

var (
	anyRole     []model.Role
	doctorOnly  = []model.Role{model.RoleDoctor}
	patientOnly = []model.Role{model.RolePatient}
)

// Routes builds the portal. Probes and metrics sit outside the session and
// CSRF middleware.
func (s *Server) Routes(m *middleware.Metrics, rl *middleware.RateLimiter, trustProxy bool) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logging(s.log), m.Middleware)

	r.HandleFunc("/healthz", s.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	p := r.PathPrefix("/").Subrouter()
	p.Use(s.sessions.Middleware, middleware.CSRF)

	p.Handle("/", s.gated(anyRole, s.loginPage)).Methods(http.MethodGet)
	p.Handle("/index.html", s.gated(anyRole, s.loginPage)).Methods(http.MethodGet)
	p.Handle("/login", middleware.RateLimitHTTP(rl, s.loginLimited)(s.gated(anyRole, s.login))).Methods(http.MethodPost)
	p.Handle("/logout", s.gated(anyRole, s.logout)).Methods(http.MethodPost)

	p.Handle("/home", s.gated(anyRole, s.home)).Methods(http.MethodGet)
	p.Handle("/dashboard", s.gated(patientOnly, s.dashboard)).Methods(http.MethodGet)
	p.Handle("/predict", s.gated(doctorOnly, s.predictPage)).Methods(http.MethodGet)
	p.Handle("/predict", s.gated(doctorOnly, s.predict)).Methods(http.MethodPost)
	p.Handle("/result", s.gated(anyRole, s.result)).Methods(http.MethodGet)

	p.Handle("/records", s.gated(anyRole, s.records)).Methods(http.MethodGet)
	p.Handle("/records/{id}", s.gated(anyRole, s.viewRecord)).Methods(http.MethodGet)
	p.Handle("/records/{id}/delete", s.gated(doctorOnly, s.deleteRecord)).Methods(http.MethodPost)

	p.Handle("/appointments", s.gated(anyRole, s.appointments)).Methods(http.MethodGet)
	p.Handle("/appointments", s.gated(patientOnly, s.scheduleAppointment)).Methods(http.MethodPost)
	if s.opts.HasPrescriptions {
		p.Handle("/prescriptions", s.gated(anyRole, s.prescriptions)).Methods(http.MethodGet)
		p.Handle("/prescriptions", s.gated(doctorOnly, s.addPrescription)).Methods(http.MethodPost)
	}
	p.Handle("/chat", s.gated(anyRole, s.chat)).Methods(http.MethodPost)

	var h http.Handler = handlers.CompressHandler(r)
	if trustProxy {
		h = handlers.ProxyHeaders(h)
	}
	return handlers.RecoveryHandler(handlers.RecoveryLogger(s.log))(h)
}

// gated runs the access gate once per request and hands the explicit
// session to the page.
func (s *Server) gated(allowed []model.Role, next pageHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Session(r.Context())
		if err != nil {
			s.log.WithContext(r.Context()).WithError(err).Error("read session")
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		d := gate.Check(sess, allowed, r.URL.Path)
		if !d.Allowed() {
			http.Redirect(w, r, d.Redirect, redirectCode(r))
			return
		}
		next(w, r, sess, d)
	})
}

func redirectCode(r *http.Request) int {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

// backend returns the request context carrying the user's backend token.
func (s *Server) backend(r *http.Request) context.Context {
	tok, err := s.sessions.Token(r.Context())
	if err != nil || tok == "" {
		return r.Context()
	}
	return gateway.WithToken(r.Context(), tok)
}

// failure maps a gateway error to a status and message for the page. A
// rejected token logs the browser out and redirects, and a request whose
// client went away gets nothing; handled is then true.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error) (status int, msg string, handled bool) {
	if r.Context().Err() != nil {
		return 0, "", true
	}
	var re *gateway.RemoteError
	if errors.As(err, &re) {
		if re.Unauthorized() {
			if lerr := s.sessions.Logout(r.Context()); lerr != nil {
				s.log.WithContext(r.Context()).WithError(lerr).Warn("logout after expired token")
			}
			http.Redirect(w, r, gate.LoginPath, redirectCode(r))
			return 0, "", true
		}
		status = re.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		return status, re.Message, false
	}
	s.log.WithContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("backend unavailable")
	return http.StatusServiceUnavailable, MsgUnavailable, false
}

func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
