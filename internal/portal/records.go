package portal

import (
	"net/http"

	"heart-clinic/internal/gate"
	"heart-clinic/internal/model"
	"heart-clinic/internal/view"

	"github.com/gorilla/mux"
)

func (s *Server) records(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	recs, err := s.gw.Records(s.backend(r))
	if err != nil {
		status, msg, handled := s.failure(w, r, err)
		if handled {
			return
		}
		pd := newPage("Records", sess, d, view.BuildRecordsView(nil, sess))
		pd.Alert = msg
		s.render(w, r, status, "records", pd)
		return
	}
	pd := newPage("Records", sess, d, view.BuildRecordsView(recs, sess))
	pd.Notice = notices[r.URL.Query().Get("notice")]
	s.render(w, r, http.StatusOK, "records", pd)
}

// viewRecord opens one of the visible records on the result page.
func (s *Server) viewRecord(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	id := mux.Vars(r)["id"]
	recs, err := s.gw.Records(s.backend(r))
	if err != nil {
		status, msg, handled := s.failure(w, r, err)
		if handled {
			return
		}
		pd := newPage("Records", sess, d, view.BuildRecordsView(nil, sess))
		pd.Alert = msg
		s.render(w, r, status, "records", pd)
		return
	}

	v := view.BuildRecordsView(recs, sess)
	rec, ok := view.FindRecord(v.Rows, id)
	if !ok {
		pd := newPage("Records", sess, d, v)
		pd.Alert = MsgRecordNotFound + id
		s.render(w, r, http.StatusNotFound, "records", pd)
		return
	}
	if err := s.sessions.SetLastResult(r.Context(), rec); err != nil {
		s.log.WithContext(r.Context()).WithError(err).Error("store last result")
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/result", http.StatusFound)
}

// deleteRecord is accepted but does nothing until the backend can delete.
func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, sess model.Session, _ gate.Decision) {
	s.log.WithComponent("portal").WithField("record_id", mux.Vars(r)["id"]).WithField("user", sess.User).
		Info("record deletion requested")
	http.Redirect(w, r, "/records?notice=deletion", http.StatusSeeOther)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	recs, err := s.gw.Records(s.backend(r))
	if err != nil {
		status, msg, handled := s.failure(w, r, err)
		if handled {
			return
		}
		pd := newPage("Dashboard", sess, d, view.Dashboard{NoData: true})
		pd.Alert = msg
		s.render(w, r, status, "dashboard", pd)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard", newPage("Dashboard", sess, d, view.BuildDashboard(recs, sess)))
}
