package clinic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"heart-clinic/internal/api"
	"heart-clinic/internal/auth"
	"heart-clinic/internal/model"
	"heart-clinic/internal/predict"
	"heart-clinic/internal/store"
)

// Predict scores the form, stores the record and, when the form names a new
// patient account, provisions it.
func (s *Service) Predict(ctx context.Context, req api.PredictRequest) (api.PredictResponse, error) {
	features, err := predict.Parse(req)
	if err != nil {
		return api.PredictResponse{}, invalid("%s", err.Error())
	}
	name := strings.TrimSpace(req[api.FieldPatientName])
	if name == "" {
		return api.PredictResponse{}, invalid("missing %s", api.FieldPatientName)
	}

	username := strings.TrimSpace(req[api.FieldPatientUsername])
	if username != "" {
		if err := s.provisionPatient(ctx, username, req[api.FieldPatientPassword]); err != nil {
			return api.PredictResponse{}, err
		}
	}

	res := predict.Score(features)
	rec := &model.MedicalRecord{
		ID:              s.nextRecordID(),
		PatientUsername: username,
		Name:            name,
		Age:             int(features[0]),
		Sex:             sexLabel(req["sex"]),
		Prediction:      res.Prediction,
		Score:           res.RiskScore,
		Date:            s.today(),
		Details:         details(req),
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return api.PredictResponse{}, fmt.Errorf("save record: %w", err)
	}
	s.log.WithComponent("clinic").WithFields(map[string]any{
		"record_id": rec.ID,
		"score":     rec.Score,
	}).Info("record saved")

	return api.PredictResponse{
		Prediction: res.Prediction,
		RiskScore:  res.RiskScore,
		RecordID:   rec.ID,
		Date:       rec.Date,
	}, nil
}

func (s *Service) provisionPatient(ctx context.Context, username, password string) error {
	u, err := s.repo.UserByUsername(ctx, username)
	switch {
	case err == nil:
		if u.Role != model.RolePatient {
			return invalid("%s is not a patient account", username)
		}
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("lookup patient: %w", err)
	}

	if password == "" {
		return invalid("missing %s", api.FieldPatientPassword)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	err = s.repo.CreateUser(ctx, &model.User{Username: username, PasswordHash: hash, Role: model.RolePatient})
	if errors.Is(err, store.ErrDuplicate) {
		// created concurrently
		return nil
	}
	if err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	s.log.Audit(username, "provision", "patient", true)
	return nil
}

func sexLabel(v string) string {
	if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f == 1 {
		return "Male"
	}
	return "Female"
}

// details keeps every submitted field except the account password.
func details(req api.PredictRequest) map[string]string {
	out := make(map[string]string, len(req))
	for k, v := range req {
		if k == api.FieldPatientPassword {
			continue
		}
		out[k] = v
	}
	return out
}

// Records returns every stored record, newest first.
func (s *Service) Records(ctx context.Context) ([]model.MedicalRecord, error) {
	return s.repo.ListRecords(ctx)
}
