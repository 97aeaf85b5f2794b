package gateway

import (
	"context"
	"fmt"
	"net/http"

	"heart-clinic/internal/api"
	"heart-clinic/internal/model"
	"heart-clinic/internal/rpc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// GRPC talks to the backend's ClinicService.
type GRPC struct {
	c *rpc.Client
}

func NewGRPC(cc grpc.ClientConnInterface) *GRPC {
	return &GRPC{c: rpc.NewClient(cc)}
}

var _ Gateway = (*GRPC)(nil)

func (g *GRPC) call(ctx context.Context, method string, in, out any) error {
	if tok := tokenFrom(ctx); tok != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tok)
	}
	return fromStatus(method, g.c.Call(ctx, method, in, out))
}

func fromStatus(method string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, method, err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, method, st.Message())
	}
	return remote(httpStatus(st.Code()), st.Message(), st.Code().String())
}

func httpStatus(c codes.Code) int {
	switch c {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (g *GRPC) Login(ctx context.Context, req api.LoginRequest) (api.LoginResponse, error) {
	var resp api.LoginResponse
	if err := g.call(ctx, rpc.MethodLogin, req, &resp); err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, remote(http.StatusOK, resp.Message, "Login failed")
	}
	return resp, nil
}

func (g *GRPC) Predict(ctx context.Context, req api.PredictRequest) (api.PredictResponse, error) {
	var resp api.PredictResponse
	err := g.call(ctx, rpc.MethodPredict, req, &resp)
	return resp, err
}

func (g *GRPC) Records(ctx context.Context) ([]model.MedicalRecord, error) {
	var out rpc.RecordList
	err := g.call(ctx, rpc.MethodRecords, nil, &out)
	return out.Records, err
}

func (g *GRPC) ScheduleAppointment(ctx context.Context, req api.ScheduleRequest) error {
	return g.write(ctx, rpc.MethodScheduleAppt, req)
}

func (g *GRPC) AddPrescription(ctx context.Context, req api.PrescriptionRequest) error {
	return g.write(ctx, rpc.MethodAddPrescription, req)
}

func (g *GRPC) write(ctx context.Context, method string, req any) error {
	var res api.Result
	if err := g.call(ctx, method, req, &res); err != nil {
		return err
	}
	if !res.Success {
		return remote(http.StatusOK, res.Error, "Request failed")
	}
	return nil
}

func (g *GRPC) Prescriptions(ctx context.Context) ([]model.Prescription, error) {
	var out rpc.PrescriptionList
	err := g.call(ctx, rpc.MethodPrescriptions, nil, &out)
	return out.Prescriptions, err
}

func (g *GRPC) Appointments(ctx context.Context) ([]model.Appointment, error) {
	var out rpc.AppointmentList
	err := g.call(ctx, rpc.MethodAppointments, nil, &out)
	return out.Appointments, err
}

func (g *GRPC) Chat(ctx context.Context, message string) (string, error) {
	var resp api.ChatResponse
	err := g.call(ctx, rpc.MethodChat, api.ChatRequest{Message: message}, &resp)
	return resp.Reply, err
}
