package store

import (
	"context"
	"encoding/json"
	"fmt"

	"heart-clinic/internal/model"
)

func (s *Store) CreateRecord(ctx context.Context, r *model.MedicalRecord) error {
	details, err := json.Marshal(r.Details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO records (id, patient_username, name, age, sex, prediction, score, date, details)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.PatientUsername, r.Name, r.Age, r.Sex, r.Prediction, r.Score, r.Date, details,
	)
	return mapErr(err)
}

func (s *Store) ListRecords(ctx context.Context) ([]model.MedicalRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, patient_username, name, age, sex, prediction, score, date, details
		 FROM records ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MedicalRecord{}
	for rows.Next() {
		var (
			r       model.MedicalRecord
			details []byte
		)
		if err := rows.Scan(
			&r.ID, &r.PatientUsername, &r.Name, &r.Age, &r.Sex,
			&r.Prediction, &r.Score, &r.Date, &details,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(details, &r.Details); err != nil {
			return nil, fmt.Errorf("record %d details: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
