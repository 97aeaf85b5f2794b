package rpc

import (
	"context"
	"errors"

	"heart-clinic/internal/api"
	"heart-clinic/internal/clinic"
	"heart-clinic/internal/logger"
	"heart-clinic/internal/middleware"
	"heart-clinic/internal/model"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type Server struct {
	svc *clinic.Service
	log *logger.Logger
}

func NewServer(svc *clinic.Service, log *logger.Logger) *Server {
	return &Server{svc: svc, log: log}
}

var _ ClinicServer = (*Server)(nil)

func (s *Server) toStatus(ctx context.Context, method string, err error) error {
	var v *clinic.ValidationError
	if errors.As(err, &v) {
		return status.Error(codes.InvalidArgument, v.Msg)
	}
	s.log.WithContext(ctx).WithError(err).WithField("method", method).Error("rpc failed")
	return status.Error(codes.Internal, "internal error")
}

func decodeReq(in *structpb.Struct, v any) error {
	if err := FromStruct(in, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func reply(v any) (*structpb.Struct, error) {
	out, err := ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

func (s *Server) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.LoginRequest
	if err := decodeReq(in, &req); err != nil {
		return nil, err
	}
	resp, err := s.svc.Login(ctx, req)
	if err != nil {
		return nil, s.toStatus(ctx, MethodLogin, err)
	}
	return reply(resp)
}

func (s *Server) Predict(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.PredictRequest
	if err := decodeReq(in, &req); err != nil {
		return nil, err
	}
	resp, err := s.svc.Predict(ctx, req)
	if err != nil {
		return nil, s.toStatus(ctx, MethodPredict, err)
	}
	return reply(resp)
}

func (s *Server) Records(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	recs, err := s.svc.Records(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, MethodRecords, err)
	}
	return reply(RecordList{Records: recs})
}

func (s *Server) ScheduleAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.ScheduleRequest
	if err := decodeReq(in, &req); err != nil {
		return nil, err
	}
	if c, ok := middleware.ClaimsFrom(ctx); ok && c.Role == model.RolePatient {
		req.PatientUsername = c.Subject
	}
	if err := s.svc.Schedule(ctx, req); err != nil {
		return nil, s.toStatus(ctx, MethodScheduleAppt, err)
	}
	return reply(api.Result{Success: true})
}

func (s *Server) Appointments(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	appts, err := s.svc.Appointments(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, MethodAppointments, err)
	}
	return reply(AppointmentList{Appointments: appts})
}

func (s *Server) AddPrescription(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.PrescriptionRequest
	if err := decodeReq(in, &req); err != nil {
		return nil, err
	}
	if c, ok := middleware.ClaimsFrom(ctx); ok && req.DoctorUsername == "" {
		req.DoctorUsername = c.Subject
	}
	if err := s.svc.AddPrescription(ctx, req); err != nil {
		return nil, s.toStatus(ctx, MethodAddPrescription, err)
	}
	return reply(api.Result{Success: true})
}

func (s *Server) Prescriptions(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	rx, err := s.svc.Prescriptions(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, MethodPrescriptions, err)
	}
	return reply(PrescriptionList{Prescriptions: rx})
}

func (s *Server) Chat(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.ChatRequest
	if err := decodeReq(in, &req); err != nil {
		return nil, err
	}
	return reply(s.svc.Chat(ctx, req))
}
