// Package api holds the JSON shapes exchanged between the portal and the
// clinic backend.
package api

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
	Token    string `json:"token,omitempty"`
}

// PredictRequest is the flat form map posted to /predict_api. Browsers send
// every value as a string, but defaults such as ca and thal may arrive as
// numbers, so decoding accepts both.
type PredictRequest map[string]string

func (p *PredictRequest) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(PredictRequest, len(raw))
	for k, v := range raw {
		switch x := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = x
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(x)
		default:
			return fmt.Errorf("field %q: unsupported value", k)
		}
	}
	*p = out
	return nil
}

// PredictResponse carries the stored record's id and date alongside the
// score so the portal's result page can point at the persisted record.
type PredictResponse struct {
	Error      string `json:"error,omitempty"`
	Prediction int    `json:"prediction"`
	RiskScore  int    `json:"risk_score"`
	RecordID   int64  `json:"record_id,omitempty"`
	Date       string `json:"date,omitempty"`
}

type ScheduleRequest struct {
	PatientUsername string `json:"patientUsername"`
	PatientName     string `json:"patientName"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Reason          string `json:"reason"`
}

type PrescriptionRequest struct {
	PatientUsername string `json:"patientUsername"`
	DoctorUsername  string `json:"doctorUsername"`
	Medication      string `json:"medication"`
	Dosage          string `json:"dosage"`
	Frequency       string `json:"frequency"`
}

// Result is the acknowledgement returned by write endpoints.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply,omitempty"`
}

// Clinical feature keys in the order the scorer consumes them.
var Features = []string{
	"age", "sex", "cp", "trestbps", "chol", "fbs",
	"restecg", "thalach", "exang", "oldpeak",
}

// Form keys that identify the patient rather than describe them clinically.
const (
	FieldPatientName     = "p_name"
	FieldPatientUsername = "patientUsername"
	FieldPatientPassword = "patientPassword"
	FieldMobile          = "mobile"
)
