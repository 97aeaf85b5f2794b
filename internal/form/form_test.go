package form

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func predictValues() url.Values {
	return url.Values{
		"p_name":   {"Ann Smith"},
		"age":      {"61"},
		"sex":      {"0"},
		"cp":       {"2"},
		"trestbps": {"150"},
		"chol":     {"260"},
		"fbs":      {"0"},
		"restecg":  {"1"},
		"thalach":  {"120"},
		"exang":    {"1"},
		"oldpeak":  {"2.3"},
		"slope":    {"1"},
	}
}

func TestPredictAppliesDefaults(t *testing.T) {
	req, err := Predict(predictValues())
	require.NoError(t, err)

	assert.Equal(t, "0", req["ca"])
	assert.Equal(t, "2", req["thal"])
	assert.Equal(t, "Ann Smith", req["p_name"])
	assert.NotContains(t, req, "patientUsername")
	assert.NotContains(t, req, "mobile")
}

func TestPredictKeepsOptionalFields(t *testing.T) {
	v := predictValues()
	v.Set("ca", "3")
	v.Set("patientUsername", "ann")
	v.Set("patientPassword", "pw")
	v.Set("mobile", " 0700000000 ")

	req, err := Predict(v)
	require.NoError(t, err)

	assert.Equal(t, "3", req["ca"])
	assert.Equal(t, "ann", req["patientUsername"])
	assert.Equal(t, "pw", req["patientPassword"])
	assert.Equal(t, "0700000000", req["mobile"])
}

func TestPredictMissingField(t *testing.T) {
	tests := []struct {
		drop string
		msg  string
	}{
		{"p_name", "Please fill in Patient Name"},
		{"age", "Please fill in Age"},
		{"thalach", "Please fill in Max Heart Rate"},
		{"slope", "Please fill in Slope"},
	}
	for _, tt := range tests {
		t.Run(tt.drop, func(t *testing.T) {
			v := predictValues()
			v.Set(tt.drop, "  ")

			_, err := Predict(v)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestAppointment(t *testing.T) {
	v := url.Values{"patientName": {"Ann"}, "date": {"2026-03-10"}, "time": {"09:30"}, "reason": {"Checkup"}}
	req, err := Appointment(v)
	require.NoError(t, err)
	assert.Equal(t, "Ann", req.PatientName)
	assert.Equal(t, "09:30", req.Time)
	assert.Empty(t, req.PatientUsername)

	v.Del("reason")
	_, err = Appointment(v)
	assert.EqualError(t, err, "Please fill in Reason")
}

func TestPrescription(t *testing.T) {
	v := url.Values{"patientUsername": {"ann"}, "medication": {"Aspirin"}, "dosage": {"75mg"}, "frequency": {"daily"}}
	req, err := Prescription(v)
	require.NoError(t, err)
	assert.Equal(t, "ann", req.PatientUsername)
	assert.Empty(t, req.DoctorUsername)

	v.Set("dosage", "")
	_, err = Prescription(v)
	assert.EqualError(t, err, "Please fill in Dosage")
}

func TestLogin(t *testing.T) {
	req, err := Login(url.Values{"username": {"ann"}, "password": {"pw"}, "role": {"Patient"}})
	require.NoError(t, err)
	assert.Equal(t, "Patient", req.Role)

	_, err = Login(url.Values{"username": {"ann"}})
	assert.EqualError(t, err, "Please fill in all fields")

	_, err = Login(url.Values{"username": {"ann"}, "password": {"pw"}})
	assert.EqualError(t, err, "Please fill in all fields")
}
