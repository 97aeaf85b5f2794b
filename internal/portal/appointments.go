package portal

import (
	"net/http"

	"heart-clinic/internal/form"
	"heart-clinic/internal/gate"
	"heart-clinic/internal/model"
	"heart-clinic/internal/view"
)

func (s *Server) appointments(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	s.renderAppointments(w, r, sess, d, http.StatusOK, "", notices[r.URL.Query().Get("notice")])
}

// renderAppointments fetches the appointments and, when mobile numbers are
// enabled, the records to take them from. A failed records fetch only
// drops the mobile column values.
func (s *Server) renderAppointments(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision, status int, alert, notice string) {
	ctx := s.backend(r)
	appts, err := s.gw.Appointments(ctx)
	if err != nil {
		st, msg, handled := s.failure(w, r, err)
		if handled {
			return
		}
		status, alert = st, msg
	}

	var recs []model.MedicalRecord
	if err == nil && s.opts.HasMobileField {
		if recs, err = s.gw.Records(ctx); err != nil {
			s.log.WithContext(r.Context()).WithError(err).Warn("appointments: records for mobile numbers")
			recs = nil
		}
	}

	pd := newPage("Appointments", sess, d, view.BuildAppointmentsView(appts, recs, sess, s.opts))
	pd.Alert, pd.Notice = alert, notice
	s.render(w, r, status, "appointments", pd)
}

// scheduleAppointment books for the logged-in patient only.
func (s *Server) scheduleAppointment(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	req, err := form.Appointment(r.PostForm)
	if err != nil {
		s.renderAppointments(w, r, sess, d, http.StatusBadRequest, err.Error(), "")
		return
	}
	req.PatientUsername = sess.User
	if err := s.gw.ScheduleAppointment(s.backend(r), req); err != nil {
		status, msg, handled := s.failure(w, r, err)
		if !handled {
			s.renderAppointments(w, r, sess, d, status, msg, "")
		}
		return
	}
	http.Redirect(w, r, "/appointments?notice=scheduled", http.StatusSeeOther)
}

func (s *Server) prescriptions(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	s.renderPrescriptions(w, r, sess, d, http.StatusOK, "", notices[r.URL.Query().Get("notice")])
}

func (s *Server) renderPrescriptions(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision, status int, alert, notice string) {
	rx, err := s.gw.Prescriptions(s.backend(r))
	if err != nil {
		st, msg, handled := s.failure(w, r, err)
		if handled {
			return
		}
		status, alert = st, msg
	}
	pd := newPage("Prescriptions", sess, d, view.BuildPrescriptionsView(rx, sess))
	pd.Alert, pd.Notice = alert, notice
	s.render(w, r, status, "prescriptions", pd)
}

// addPrescription records the logged-in doctor as the prescriber.
func (s *Server) addPrescription(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	req, err := form.Prescription(r.PostForm)
	if err != nil {
		s.renderPrescriptions(w, r, sess, d, http.StatusBadRequest, err.Error(), "")
		return
	}
	req.DoctorUsername = sess.User
	if err := s.gw.AddPrescription(s.backend(r), req); err != nil {
		status, msg, handled := s.failure(w, r, err)
		if !handled {
			s.renderPrescriptions(w, r, sess, d, status, msg, "")
		}
		return
	}
	s.log.Audit(sess.User, "prescribe", "patient:"+req.PatientUsername, true)
	http.Redirect(w, r, "/prescriptions?notice=prescribed", http.StatusSeeOther)
}
