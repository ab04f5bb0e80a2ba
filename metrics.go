package promise

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records optional instrumentation for a [Loop]: how many turns it
// takes to satisfy a Wait, how long a Wait takes end to end, and how many
// detached tasks fail. Use [NewOTelMetrics] for real OpenTelemetry metrics,
// or [NoopMetrics] (the default) to disable instrumentation entirely.
//
// This has no bearing on the scheduling algebra itself; it is a pure
// observer, grounded on the same shape flowgraph's observability package
// uses for its MetricsRecorder.
type Metrics interface {
	// RecordTurn is called once per popped-and-fired Event while a Wait is
	// pumping the queue.
	RecordTurn(loop uuid.UUID)

	// StartWait is called when a Wait begins; the returned function must be
	// called exactly once, when the Wait returns, with the error (if any)
	// the waited-on promise resolved to.
	StartWait(loop uuid.UUID) func(err error)

	// RecordTaskFailure is called once per TaskSet entry that completes
	// with an error.
	RecordTaskFailure(loop uuid.UUID)
}

// NoopMetrics discards everything. It is the default [Metrics]
// implementation for a [Loop] that isn't configured with [WithMetrics].
type NoopMetrics struct{}

func (NoopMetrics) RecordTurn(uuid.UUID) {}
func (NoopMetrics) StartWait(uuid.UUID) func(error) { return func(error) {} }
func (NoopMetrics) RecordTaskFailure(uuid.UUID) {}

type otelMetrics struct {
	turns         metric.Int64Counter
	waitLatency   metric.Float64Histogram
	waitErrors    metric.Int64Counter
	taskFailures  metric.Int64Counter
}

var (
	defaultOTelMetrics     *otelMetrics
	defaultOTelMetricsErr  error
	defaultOTelMetricsOnce sync.Once
)

func getDefaultOTelMetrics() (*otelMetrics, error) {
	defaultOTelMetricsOnce.Do(func() {
		defaultOTelMetrics, defaultOTelMetricsErr = newOTelMetrics()
	})
	return defaultOTelMetrics, defaultOTelMetricsErr
}

func newOTelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("promise")

	turns, err := meter.Int64Counter("promise.loop.turns",
		metric.WithDescription("Number of events popped and fired by a Loop"))
	if err != nil {
		return nil, err
	}

	waitLatency, err := meter.Float64Histogram("promise.loop.wait_latency_ms",
		metric.WithDescription("Wall-clock duration of a single Wait call"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	waitErrors, err := meter.Int64Counter("promise.loop.wait_errors",
		metric.WithDescription("Number of Wait calls that resolved to an error"))
	if err != nil {
		return nil, err
	}

	taskFailures, err := meter.Int64Counter("promise.taskset.failures",
		metric.WithDescription("Number of TaskSet entries that completed with an error"))
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		turns:        turns,
		waitLatency:  waitLatency,
		waitErrors:   waitErrors,
		taskFailures: taskFailures,
	}, nil
}

// NewOTelMetrics returns a [Metrics] backed by OpenTelemetry, using the
// global meter provider. Configure the provider with otel.SetMeterProvider
// before calling this. If metrics initialization fails, it logs a warning
// and falls back to [NoopMetrics].
func NewOTelMetrics() Metrics {
	m, err := getDefaultOTelMetrics()
	if err != nil {
		slog.Warn("promise: metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordTurn(loop uuid.UUID) {
	m.turns.Add(context.Background(), 1, metric.WithAttributes(attribute.String("loop_id", loop.String())))
}

func (m *otelMetrics) StartWait(loop uuid.UUID) func(err error) {
	start := time.Now()
	return func(err error) {
		attrs := metric.WithAttributes(attribute.String("loop_id", loop.String()))
		m.waitLatency.Record(context.Background(), float64(time.Since(start).Milliseconds()), attrs)
		if err != nil {
			m.waitErrors.Add(context.Background(), 1, attrs)
		}
	}
}

func (m *otelMetrics) RecordTaskFailure(loop uuid.UUID) {
	m.taskFailures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("loop_id", loop.String())))
}
