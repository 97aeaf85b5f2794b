package view

import "heart-clinic/internal/model"

type PrescriptionsView struct {
	Rows  []model.Prescription
	Empty bool
}

// BuildPrescriptionsView only ever shows the session user's own
// prescriptions, whatever the role.
func BuildPrescriptionsView(rx []model.Prescription, s model.Session) PrescriptionsView {
	rows := []model.Prescription{}
	if s.LoggedIn() {
		rows = ownedBy(rx, s.User, func(p model.Prescription) string { return p.PatientUsername })
	}
	return PrescriptionsView{Rows: rows, Empty: len(rows) == 0}
}
