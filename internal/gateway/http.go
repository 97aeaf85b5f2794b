package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"heart-clinic/internal/api"
	"heart-clinic/internal/model"
)

const maxBody = 4 << 20

// HTTP talks to the backend's JSON endpoints.
type HTTP struct {
	base   string
	client *http.Client
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

var _ Gateway = (*HTTP)(nil)

// do sends in as JSON (nil means no body) and decodes a 2xx reply into out.
// A 4xx/5xx reply carrying an error message becomes a RemoteError.
func (h *HTTP) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.base+path, body)
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := tokenFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &e) == nil && (e.Error != "" || e.Message != "") {
			return remote(resp.StatusCode, e.Error, e.Message)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode)
		}
		return remote(resp.StatusCode, "", http.StatusText(resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}
	return nil
}

func (h *HTTP) Login(ctx context.Context, req api.LoginRequest) (api.LoginResponse, error) {
	var resp api.LoginResponse
	if err := h.do(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, remote(http.StatusOK, resp.Message, "Login failed")
	}
	return resp, nil
}

func (h *HTTP) Predict(ctx context.Context, req api.PredictRequest) (api.PredictResponse, error) {
	var resp api.PredictResponse
	if err := h.do(ctx, http.MethodPost, "/predict_api", req, &resp); err != nil {
		return resp, err
	}
	if resp.Error != "" {
		return resp, remote(http.StatusOK, resp.Error, "")
	}
	return resp, nil
}

func (h *HTTP) Records(ctx context.Context) ([]model.MedicalRecord, error) {
	var recs []model.MedicalRecord
	err := h.do(ctx, http.MethodGet, "/get_records", nil, &recs)
	return recs, err
}

func (h *HTTP) ScheduleAppointment(ctx context.Context, req api.ScheduleRequest) error {
	return h.write(ctx, "/schedule_appointment", req)
}

func (h *HTTP) AddPrescription(ctx context.Context, req api.PrescriptionRequest) error {
	return h.write(ctx, "/add_prescription", req)
}

func (h *HTTP) write(ctx context.Context, path string, req any) error {
	var res api.Result
	if err := h.do(ctx, http.MethodPost, path, req, &res); err != nil {
		return err
	}
	if !res.Success {
		return remote(http.StatusOK, res.Error, "Request failed")
	}
	return nil
}

func (h *HTTP) Prescriptions(ctx context.Context) ([]model.Prescription, error) {
	var rx []model.Prescription
	err := h.do(ctx, http.MethodGet, "/get_prescriptions", nil, &rx)
	return rx, err
}

func (h *HTTP) Appointments(ctx context.Context) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := h.do(ctx, http.MethodGet, "/get_appointments", nil, &appts)
	return appts, err
}

func (h *HTTP) Chat(ctx context.Context, message string) (string, error) {
	var resp api.ChatResponse
	err := h.do(ctx, http.MethodPost, "/chat", api.ChatRequest{Message: message}, &resp)
	return resp.Reply, err
}
