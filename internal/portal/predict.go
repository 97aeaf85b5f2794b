package portal

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"heart-clinic/internal/api"
	"heart-clinic/internal/form"
	"heart-clinic/internal/gate"
	"heart-clinic/internal/model"
)

type predictField struct {
	Name  string
	Label string
	Value string
}

type predictForm struct {
	Values url.Values
	Fields []predictField
}

func newPredictForm(v url.Values) predictForm {
	f := predictForm{Values: v, Fields: make([]predictField, 0, len(form.ClinicalFields))}
	for _, name := range form.ClinicalFields {
		f.Fields = append(f.Fields, predictField{Name: name, Label: form.Label(name), Value: v.Get(name)})
	}
	return f
}

func (s *Server) predictPage(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	s.render(w, r, http.StatusOK, "predict", newPage("New Prediction", sess, d, newPredictForm(nil)))
}

// predict validates the form locally, asks the backend for a score and
// keeps the outcome as the browser's last result.
func (s *Server) predict(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	fail := func(status int, msg string) {
		pd := newPage("New Prediction", sess, d, newPredictForm(r.PostForm))
		pd.Alert = msg
		s.render(w, r, status, "predict", pd)
	}

	req, err := form.Predict(r.PostForm)
	if err != nil {
		fail(http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.gw.Predict(s.backend(r), req)
	if err != nil {
		status, msg, handled := s.failure(w, r, err)
		if !handled {
			fail(status, msg)
		}
		return
	}

	rec := resultRecord(req, resp, time.Now())
	if err := s.sessions.SetLastResult(r.Context(), rec); err != nil {
		s.log.WithContext(r.Context()).WithError(err).Error("store last result")
		fail(http.StatusInternalServerError, "Could not save the result. Please try again.")
		return
	}
	http.Redirect(w, r, "/result", http.StatusSeeOther)
}

// resultRecord assembles the record shown on the result page from what was
// submitted and what the backend answered.
func resultRecord(req api.PredictRequest, resp api.PredictResponse, now time.Time) model.MedicalRecord {
	id := resp.RecordID
	if id == 0 {
		id = now.UnixMilli()
	}
	date := resp.Date
	if date == "" {
		date = now.Format(model.DateLayout)
	}
	age, _ := strconv.ParseFloat(req["age"], 64)
	sex := "Female"
	if req["sex"] == "1" {
		sex = "Male"
	}

	details := make(map[string]string, len(req))
	for k, v := range req {
		if k != api.FieldPatientPassword {
			details[k] = v
		}
	}
	return model.MedicalRecord{
		ID:              id,
		PatientUsername: req[api.FieldPatientUsername],
		Name:            req[api.FieldPatientName],
		Age:             int(age),
		Sex:             sex,
		Prediction:      resp.Prediction,
		Score:           resp.RiskScore,
		Date:            date,
		Details:         details,
	}
}

func (s *Server) result(w http.ResponseWriter, r *http.Request, sess model.Session, d gate.Decision) {
	rec, err := s.sessions.LastResult(r.Context())
	if err != nil {
		s.log.WithContext(r.Context()).WithError(err).Warn("read last result")
		rec = nil
	}
	s.render(w, r, http.StatusOK, "result", newPage("Result", sess, d, rec))
}
