package view

import "heart-clinic/internal/model"

type AppointmentRow struct {
	model.Appointment
	// Mobile is empty when no record for the patient carries one.
	Mobile string
}

type AppointmentsView struct {
	Rows       []AppointmentRow
	Empty      bool
	ShowMobile bool
}

// BuildAppointmentsView filters to the patient's own appointments for a
// Patient and passes everything through for a Doctor. With
// opts.HasMobileField each row is joined to the records by patient username
// to pick up a mobile number; a missing match leaves Mobile empty.
func BuildAppointmentsView(appts []model.Appointment, records []model.MedicalRecord, s model.Session, opts Options) AppointmentsView {
	var rows []model.Appointment
	switch {
	case !s.LoggedIn():
	case s.Role == model.RoleDoctor:
		rows = appts
	default:
		rows = ownedBy(appts, s.User, func(a model.Appointment) string { return a.PatientUsername })
	}

	var mobiles map[string]string
	if opts.HasMobileField {
		mobiles = mobileIndex(records)
	}

	v := AppointmentsView{
		Rows:       make([]AppointmentRow, 0, len(rows)),
		Empty:      len(rows) == 0,
		ShowMobile: opts.HasMobileField,
	}
	for _, a := range rows {
		v.Rows = append(v.Rows, AppointmentRow{Appointment: a, Mobile: mobiles[a.PatientUsername]})
	}
	return v
}

// mobileIndex maps patient username to the first non-empty mobile found,
// which under newest-first ordering is the most recent one.
func mobileIndex(records []model.MedicalRecord) map[string]string {
	idx := make(map[string]string)
	for _, r := range records {
		if r.PatientUsername == "" {
			continue
		}
		if _, ok := idx[r.PatientUsername]; ok {
			continue
		}
		if m := r.Details["mobile"]; m != "" {
			idx[r.PatientUsername] = m
		}
	}
	return idx
}
