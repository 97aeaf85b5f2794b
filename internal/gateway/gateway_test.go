package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"heart-clinic/internal/api"
	"heart-clinic/internal/clinic"
	"heart-clinic/internal/handler"
	"heart-clinic/internal/logger"
	"heart-clinic/internal/middleware"
	"heart-clinic/internal/rpc"
	"heart-clinic/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

const secret = "test-secret"

func backend(t *testing.T) *clinic.Service {
	t.Helper()
	svc := clinic.New(store.NewMemory(), secret, logger.Discard())
	require.NoError(t, svc.SeedDoctor(context.Background(), "doctor", "doctor123"))
	return svc
}

func httpGateway(t *testing.T) Gateway {
	t.Helper()
	rl := middleware.NewRateLimiter(100, 100)
	t.Cleanup(rl.Close)
	h := handler.New(backend(t), secret, logger.Discard()).Routes(middleware.NewMetrics("test"), rl, []string{"*"})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTP(srv.URL+"/", 5*time.Second)
}

func grpcGateway(t *testing.T) (Gateway, *grpc.Server) {
	t.Helper()
	rl := middleware.NewRateLimiter(100, 100)
	t.Cleanup(rl.Close)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.RateLimit(rl, rpc.FullMethod(rpc.MethodLogin)),
		middleware.Auth(secret, rpc.Policy()),
	))
	rpc.RegisterClinicServer(srv, rpc.NewServer(backend(t), logger.Discard()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := rpc.Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewGRPC(conn), srv
}

func predictForm() api.PredictRequest {
	return api.PredictRequest{
		"p_name": "Ann Lee", "patientUsername": "ann", "patientPassword": "pw", "mobile": "0700000000",
		"age": "61", "sex": "0", "cp": "1", "trestbps": "150", "chol": "250", "fbs": "0",
		"restecg": "1", "thalach": "130", "exang": "0", "oldpeak": "0.4", "slope": "1", "ca": "0", "thal": "2",
	}
}

// exercise runs the same contract checks against either transport.
func exercise(t *testing.T, gw Gateway) {
	ctx := context.Background()

	_, err := gw.Login(ctx, api.LoginRequest{Username: "doctor", Password: "nope", Role: "Doctor"})
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Invalid doctor credentials", re.Message)

	_, err = gw.Records(ctx)
	require.ErrorAs(t, err, &re)
	assert.True(t, re.Unauthorized())

	resp, err := gw.Login(ctx, api.LoginRequest{Username: "doctor", Password: "doctor123", Role: "Doctor"})
	require.NoError(t, err)
	assert.Equal(t, "/home", resp.Redirect)
	doctor := WithToken(ctx, resp.Token)

	pr, err := gw.Predict(doctor, predictForm())
	require.NoError(t, err)
	assert.Equal(t, 96, pr.RiskScore)
	assert.Equal(t, 1, pr.Prediction)
	assert.NotZero(t, pr.RecordID)

	bad := predictForm()
	bad["age"] = "old"
	_, err = gw.Predict(doctor, bad)
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Message, "age")

	recs, err := gw.Records(doctor)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, pr.RecordID, recs[0].ID)
	assert.Equal(t, "0700000000", recs[0].Details["mobile"])
	assert.NotContains(t, recs[0].Details, "patientPassword")

	require.NoError(t, gw.AddPrescription(doctor, api.PrescriptionRequest{
		PatientUsername: "ann", Medication: "Aspirin", Dosage: "75mg", Frequency: "daily",
	}))

	resp, err = gw.Login(ctx, api.LoginRequest{Username: "ann", Password: "pw", Role: "Patient"})
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", resp.Redirect)
	ann := WithToken(ctx, resp.Token)

	require.NoError(t, gw.ScheduleAppointment(ann, api.ScheduleRequest{
		PatientName: "Ann Lee", Date: "2026-03-10", Time: "09:30", Reason: "Checkup",
	}))
	appts, err := gw.Appointments(ann)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "ann", appts[0].PatientUsername)

	err = gw.ScheduleAppointment(ann, api.ScheduleRequest{PatientName: "Ann Lee"})
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.Status)

	rx, err := gw.Prescriptions(ann)
	require.NoError(t, err)
	require.Len(t, rx, 1)
	assert.Equal(t, "doctor", rx[0].DoctorUsername)

	_, err = gw.Predict(ann, predictForm())
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusForbidden, re.Status)

	reply, err := gw.Chat(ann, "how do I book an appointment?")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}

func TestHTTPGateway(t *testing.T) {
	exercise(t, httpGateway(t))
}

func TestGRPCGateway(t *testing.T) {
	gw, _ := grpcGateway(t)
	exercise(t, gw)
}

func TestHTTPGatewayUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error without body", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"undecodable body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewHTTP(srv.URL, time.Second).Records(context.Background())
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewHTTP(url, time.Second).Chat(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestHTTPGatewayRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"error":"slot taken"}`))
	}))
	defer srv.Close()

	err := NewHTTP(srv.URL, time.Second).ScheduleAppointment(WithToken(context.Background(), "tok"), api.ScheduleRequest{})
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "slot taken", re.Message)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestGRPCGatewayUnavailable(t *testing.T) {
	gw, srv := grpcGateway(t)
	srv.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := gw.Login(ctx, api.LoginRequest{Username: "doctor", Password: "doctor123"})
	assert.ErrorIs(t, err, ErrUnavailable)
}
