package model

import "time"

type Role string

const (
	RoleDoctor  Role = "Doctor"
	RolePatient Role = "Patient"
)

// ParseRole accepts the exact role names only; anything else is the zero Role.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleDoctor, RolePatient:
		return Role(s)
	}
	return ""
}

// Home is the landing page for the role.
func (r Role) Home() string {
	if r == RolePatient {
		return "/dashboard"
	}
	return "/home"
}

// Session is the portal's belief about who is logged in. A session with only
// one of the two fields set counts as logged out.
type Session struct {
	User string
	Role Role
}

func (s Session) LoggedIn() bool {
	return s.User != "" && s.Role != ""
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

type MedicalRecord struct {
	ID              int64             `json:"id"`
	PatientUsername string            `json:"patient_username"`
	Name            string            `json:"name"`
	Age             int               `json:"age"`
	Sex             string            `json:"sex"`
	Prediction      int               `json:"prediction"`
	Score           int               `json:"score"`
	Date            string            `json:"date"`
	Details         map[string]string `json:"details"`
}

func (r MedicalRecord) PredictionLabel() string {
	if r.Prediction == 1 {
		return "Heart Disease Risk Detected"
	}
	return "No Heart Disease Detected"
}

func (r MedicalRecord) Tier() Tier { return TierOf(r.Score) }

type Appointment struct {
	ID              int64  `json:"id"`
	PatientUsername string `json:"patient_username"`
	PatientName     string `json:"patient_name"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
}

const StatusScheduled = "Scheduled"

type Prescription struct {
	ID              int64  `json:"id"`
	PatientUsername string `json:"patient_username"`
	DoctorUsername  string `json:"doctor_username"`
	Medication      string `json:"medication"`
	Dosage          string `json:"dosage"`
	Frequency       string `json:"frequency"`
	Date            string `json:"date"`
}

// DateLayout is the calendar date format stored on records and prescriptions.
const DateLayout = "2006-01-02"
