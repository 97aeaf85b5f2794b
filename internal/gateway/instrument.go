package gateway

import (
	"context"
	"errors"
	"time"

	"heart-clinic/internal/api"
	"heart-clinic/internal/logger"
	"heart-clinic/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "heart-clinic/gateway"

// Call outcomes used as the "outcome" metric label.
const (
	OutcomeOK          = "ok"
	OutcomeRemote      = "remote_error"
	OutcomeUnavailable = "unavailable"
)

type instrumented struct {
	next      Gateway
	transport string
	calls     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	tracer    trace.Tracer
	log       *logger.Logger
}

// Instrument wraps next so every call is counted, timed, traced and logged.
// The collectors are registered on reg.
func Instrument(next Gateway, transport string, reg prometheus.Registerer, log *logger.Logger) Gateway {
	g := &instrumented{
		next:      next,
		transport: transport,
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "clinic_gateway_calls_total",
				Help:        "Backend calls made by the portal",
				ConstLabels: prometheus.Labels{"transport": transport},
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "clinic_gateway_call_duration_seconds",
				Help:        "Duration of backend calls made by the portal",
				ConstLabels: prometheus.Labels{"transport": transport},
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		tracer: otel.Tracer(tracerName),
		log:    log,
	}
	reg.MustRegister(g.calls, g.duration)
	return g
}

func outcome(err error) string {
	var re *RemoteError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &re):
		return OutcomeRemote
	default:
		return OutcomeUnavailable
	}
}

func (g *instrumented) observe(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := g.tracer.Start(ctx, "gateway."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("gateway.transport", g.transport)),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	res := outcome(err)
	g.calls.WithLabelValues(op, res).Inc()
	g.duration.WithLabelValues(op).Observe(elapsed.Seconds())

	entry := g.log.WithContext(ctx).WithFields(logrus.Fields{
		"component":   "gateway",
		"operation":   op,
		"transport":   g.transport,
		"outcome":     res,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, res)
		if res == OutcomeUnavailable {
			entry.WithError(err).Error("backend call failed")
		} else {
			entry.WithError(err).Info("backend rejected call")
		}
		return err
	}
	entry.Debug("backend call")
	return nil
}

func (g *instrumented) Login(ctx context.Context, req api.LoginRequest) (resp api.LoginResponse, err error) {
	err = g.observe(ctx, "login", func(ctx context.Context) error {
		var e error
		resp, e = g.next.Login(ctx, req)
		return e
	})
	return resp, err
}

func (g *instrumented) Predict(ctx context.Context, req api.PredictRequest) (resp api.PredictResponse, err error) {
	err = g.observe(ctx, "predict", func(ctx context.Context) error {
		var e error
		resp, e = g.next.Predict(ctx, req)
		return e
	})
	return resp, err
}

func (g *instrumented) Records(ctx context.Context) (recs []model.MedicalRecord, err error) {
	err = g.observe(ctx, "records", func(ctx context.Context) error {
		var e error
		recs, e = g.next.Records(ctx)
		return e
	})
	return recs, err
}

func (g *instrumented) ScheduleAppointment(ctx context.Context, req api.ScheduleRequest) error {
	return g.observe(ctx, "schedule_appointment", func(ctx context.Context) error {
		return g.next.ScheduleAppointment(ctx, req)
	})
}

func (g *instrumented) AddPrescription(ctx context.Context, req api.PrescriptionRequest) error {
	return g.observe(ctx, "add_prescription", func(ctx context.Context) error {
		return g.next.AddPrescription(ctx, req)
	})
}

func (g *instrumented) Prescriptions(ctx context.Context) (rx []model.Prescription, err error) {
	err = g.observe(ctx, "prescriptions", func(ctx context.Context) error {
		var e error
		rx, e = g.next.Prescriptions(ctx)
		return e
	})
	return rx, err
}

func (g *instrumented) Appointments(ctx context.Context) (appts []model.Appointment, err error) {
	err = g.observe(ctx, "appointments", func(ctx context.Context) error {
		var e error
		appts, e = g.next.Appointments(ctx)
		return e
	})
	return appts, err
}

func (g *instrumented) Chat(ctx context.Context, message string) (reply string, err error) {
	err = g.observe(ctx, "chat", func(ctx context.Context) error {
		var e error
		reply, e = g.next.Chat(ctx, message)
		return e
	})
	return reply, err
}
