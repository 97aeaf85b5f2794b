package gate

import (
	"testing"

	"heart-clinic/internal/model"

	"github.com/stretchr/testify/assert"
)

var (
	doctorOnly  = []model.Role{model.RoleDoctor}
	patientOnly = []model.Role{model.RolePatient}
)

func TestCheck(t *testing.T) {
	doctor := model.Session{User: "doctor", Role: model.RoleDoctor}
	patient := model.Session{User: "ann", Role: model.RolePatient}

	tests := []struct {
		name    string
		session model.Session
		allowed []model.Role
		page    string
		want    Decision
	}{
		{"anonymous on protected page", model.Session{}, doctorOnly, "/predict", Decision{Redirect: "/"}},
		{"anonymous on any-role page", model.Session{}, nil, "/records", Decision{Redirect: "/"}},
		{"anonymous on login page", model.Session{}, nil, "/", Decision{}},
		{"anonymous on index.html", model.Session{}, doctorOnly, "/index.html", Decision{}},
		{"role without user", model.Session{Role: model.RolePatient}, doctorOnly, "/home", Decision{Redirect: "/"}},
		{"user without role", model.Session{User: "ann"}, nil, "/records", Decision{Redirect: "/"}},
		{"patient on doctor page", patient, doctorOnly, "/predict", Decision{Redirect: "/dashboard", HideDoctorNav: true}},
		{"doctor on doctor page", doctor, doctorOnly, "/predict", Decision{}},
		{"doctor on patient page", doctor, patientOnly, "/dashboard", Decision{Redirect: "/home"}},
		{"patient on any-role page", patient, nil, "/records", Decision{HideDoctorNav: true}},
		{"doctor on any-role page", doctor, nil, "/records", Decision{}},
		{"empty allow list admits nobody", doctor, []model.Role{}, "/x", Decision{Redirect: "/home"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.session, tt.allowed, tt.page)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Redirect == "", got.Allowed())
		})
	}
}
