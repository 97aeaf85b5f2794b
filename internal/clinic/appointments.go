package clinic

import (
	"context"
	"fmt"
	"strings"

	"heart-clinic/internal/api"
	"heart-clinic/internal/chat"
	"heart-clinic/internal/model"
)

func (s *Service) Schedule(ctx context.Context, req api.ScheduleRequest) error {
	if err := required(
		[2]string{"patientUsername", req.PatientUsername},
		[2]string{"patientName", req.PatientName},
		[2]string{"date", req.Date},
		[2]string{"time", req.Time},
		[2]string{"reason", req.Reason},
	); err != nil {
		return err
	}
	a := &model.Appointment{
		PatientUsername: strings.TrimSpace(req.PatientUsername),
		PatientName:     strings.TrimSpace(req.PatientName),
		Date:            req.Date,
		Time:            req.Time,
		Reason:          strings.TrimSpace(req.Reason),
		Status:          model.StatusScheduled,
	}
	if err := s.repo.CreateAppointment(ctx, a); err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}
	return nil
}

func (s *Service) Appointments(ctx context.Context) ([]model.Appointment, error) {
	return s.repo.ListAppointments(ctx)
}

// AddPrescription dates the prescription today.
func (s *Service) AddPrescription(ctx context.Context, req api.PrescriptionRequest) error {
	if err := required(
		[2]string{"patientUsername", req.PatientUsername},
		[2]string{"doctorUsername", req.DoctorUsername},
		[2]string{"medication", req.Medication},
		[2]string{"dosage", req.Dosage},
		[2]string{"frequency", req.Frequency},
	); err != nil {
		return err
	}
	p := &model.Prescription{
		PatientUsername: strings.TrimSpace(req.PatientUsername),
		DoctorUsername:  req.DoctorUsername,
		Medication:      strings.TrimSpace(req.Medication),
		Dosage:          strings.TrimSpace(req.Dosage),
		Frequency:       strings.TrimSpace(req.Frequency),
		Date:            s.today(),
	}
	if err := s.repo.CreatePrescription(ctx, p); err != nil {
		return fmt.Errorf("save prescription: %w", err)
	}
	s.log.Audit(p.DoctorUsername, "prescribe", "patient:"+p.PatientUsername, true)
	return nil
}

func (s *Service) Prescriptions(ctx context.Context) ([]model.Prescription, error) {
	return s.repo.ListPrescriptions(ctx)
}

func (s *Service) Chat(_ context.Context, req api.ChatRequest) api.ChatResponse {
	return api.ChatResponse{Reply: chat.Reply(req.Message)}
}
