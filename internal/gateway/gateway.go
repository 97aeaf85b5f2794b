// Package gateway is the portal's view of the clinic backend. Callers see a
// single Gateway interface; the transport is HTTP (the JSON contract) or
// gRPC.
package gateway

import (
	"context"
	"errors"
	"net/http"

	"heart-clinic/internal/api"
	"heart-clinic/internal/model"
)

type Gateway interface {
	Login(ctx context.Context, req api.LoginRequest) (api.LoginResponse, error)
	Predict(ctx context.Context, req api.PredictRequest) (api.PredictResponse, error)
	Records(ctx context.Context) ([]model.MedicalRecord, error)
	ScheduleAppointment(ctx context.Context, req api.ScheduleRequest) error
	AddPrescription(ctx context.Context, req api.PrescriptionRequest) error
	Prescriptions(ctx context.Context) ([]model.Prescription, error)
	Appointments(ctx context.Context) ([]model.Appointment, error)
	Chat(ctx context.Context, message string) (string, error)
}

// ErrUnavailable means the backend could not be reached or answered with
// something that could not be decoded. Errors returned for that case wrap it.
var ErrUnavailable = errors.New("backend unavailable")

// RemoteError is a failure the backend reported itself.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Unauthorized reports whether the backend rejected the caller's token.
func (e *RemoteError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

func remote(status int, msg, fallback string) *RemoteError {
	if msg == "" {
		msg = fallback
	}
	return &RemoteError{Status: status, Message: msg}
}

type tokenKey struct{}

// WithToken attaches the backend access token to ctx; both transports send it
// as a bearer credential.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}
