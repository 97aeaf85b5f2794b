package store

import (
	"context"

	"heart-clinic/internal/model"
)

func (s *Store) CreatePrescription(ctx context.Context, p *model.Prescription) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO prescriptions (patient_username, doctor_username, medication, dosage, frequency, date)
		 VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		p.PatientUsername, p.DoctorUsername, p.Medication, p.Dosage, p.Frequency, p.Date,
	).Scan(&p.ID)
	return mapErr(err)
}

func (s *Store) ListPrescriptions(ctx context.Context) ([]model.Prescription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, patient_username, doctor_username, medication, dosage, frequency, date
		 FROM prescriptions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Prescription{}
	for rows.Next() {
		var p model.Prescription
		if err := rows.Scan(
			&p.ID, &p.PatientUsername, &p.DoctorUsername, &p.Medication, &p.Dosage, &p.Frequency, &p.Date,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
