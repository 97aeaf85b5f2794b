// Package form validates portal form submissions before anything is sent to
// the backend.
package form

import (
	"net/url"
	"strings"

	"heart-clinic/internal/api"
)

// FieldError names the first required field that was left blank.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "Please fill in " + e.Field
}

// ClinicalFields are the predict form inputs in display order.
var ClinicalFields = append(append([]string{}, api.Features...), "slope", "ca", "thal")

// Defaults applied when an optional clinical input is blank.
var defaults = map[string]string{
	"ca":   "0",
	"thal": "2",
}

var labels = map[string]string{
	api.FieldPatientName: "Patient Name",
	"age":                "Age",
	"sex":                "Sex",
	"cp":                 "Chest Pain Type",
	"trestbps":           "Resting Blood Pressure",
	"chol":               "Cholesterol",
	"fbs":                "Fasting Blood Sugar",
	"restecg":            "Resting ECG",
	"thalach":            "Max Heart Rate",
	"exang":              "Exercise Induced Angina",
	"oldpeak":            "ST Depression",
	"slope":              "Slope",
	"patientName":        "Patient Name",
	"date":               "Date",
	"time":               "Time",
	"reason":             "Reason",
	"patientUsername":    "Patient Username",
	"medication":         "Medication",
	"dosage":             "Dosage",
	"frequency":          "Frequency",
}

// Label is the human name of a form field.
func Label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

func get(v url.Values, key string) string {
	return strings.TrimSpace(v.Get(key))
}

func required(v url.Values, keys ...string) error {
	for _, k := range keys {
		if get(v, k) == "" {
			return &FieldError{Field: Label(k)}
		}
	}
	return nil
}

// Predict collects the prediction form. The patient account fields and the
// mobile number are optional and only forwarded when filled in.
func Predict(v url.Values) (api.PredictRequest, error) {
	req := api.PredictRequest{}

	if err := required(v, api.FieldPatientName); err != nil {
		return nil, err
	}
	req[api.FieldPatientName] = get(v, api.FieldPatientName)

	for _, f := range ClinicalFields {
		val := get(v, f)
		if val == "" {
			d, ok := defaults[f]
			if !ok {
				return nil, &FieldError{Field: Label(f)}
			}
			val = d
		}
		req[f] = val
	}

	for _, f := range []string{api.FieldPatientUsername, api.FieldPatientPassword, api.FieldMobile} {
		if val := get(v, f); val != "" {
			req[f] = val
		}
	}
	return req, nil
}

// Appointment collects the scheduling form. The patient username is filled
// in from the session by the caller.
func Appointment(v url.Values) (api.ScheduleRequest, error) {
	if err := required(v, "patientName", "date", "time", "reason"); err != nil {
		return api.ScheduleRequest{}, err
	}
	return api.ScheduleRequest{
		PatientName: get(v, "patientName"),
		Date:        get(v, "date"),
		Time:        get(v, "time"),
		Reason:      get(v, "reason"),
	}, nil
}

// Prescription collects the doctor's prescription form.
func Prescription(v url.Values) (api.PrescriptionRequest, error) {
	if err := required(v, "patientUsername", "medication", "dosage", "frequency"); err != nil {
		return api.PrescriptionRequest{}, err
	}
	return api.PrescriptionRequest{
		PatientUsername: get(v, "patientUsername"),
		Medication:      get(v, "medication"),
		Dosage:          get(v, "dosage"),
		Frequency:       get(v, "frequency"),
	}, nil
}

// Login needs both credentials and a role choice.
func Login(v url.Values) (api.LoginRequest, error) {
	if get(v, "username") == "" || v.Get("password") == "" || get(v, "role") == "" {
		return api.LoginRequest{}, &FieldError{Field: "all fields"}
	}
	return api.LoginRequest{
		Username: get(v, "username"),
		Password: v.Get("password"),
		Role:     get(v, "role"),
	}, nil
}
