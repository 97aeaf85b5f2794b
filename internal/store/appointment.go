package store

import (
	"context"

	"heart-clinic/internal/model"
)

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if a.Status == "" {
		a.Status = model.StatusScheduled
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (patient_username, patient_name, appointment_date, appointment_time, reason, status)
		 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		a.PatientUsername, a.PatientName, a.Date, a.Time, a.Reason, a.Status,
	).Scan(&a.ID)
	return mapErr(err)
}

func (s *Store) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, patient_username, patient_name, appointment_date, appointment_time, reason, status
		 FROM appointments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(
			&a.ID, &a.PatientUsername, &a.PatientName, &a.Date, &a.Time, &a.Reason, &a.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
