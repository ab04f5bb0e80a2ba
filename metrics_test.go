package promise

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(resource.Default()),
	)

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		_ = provider.Shutdown(context.Background())
	})

	return reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// TestOTelMetricsTaskFailureCounter covers property 12: a TaskSet failure
// increments the failure counter exactly once per TaskFailed.
func TestOTelMetricsTaskFailureCounter(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOTelMetrics()
	require.NoError(t, err)

	loop := NewLoop(WithMetrics(m))

	handler := &capturingErrorHandler{}
	tasks := NewTaskSet(loop, handler)
	tasks.Add(Then(Resolved(struct{}{}), func(struct{}) (struct{}, error) {
		return struct{}{}, errors.New("boom")
	}))
	require.Len(t, handler.failures, 1)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "promise.taskset.failures")
	require.NotNil(t, metric)

	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum type")
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

type capturingErrorHandler struct {
	failures []error
}

func (h *capturingErrorHandler) TaskFailed(err error) {
	h.failures = append(h.failures, err)
}

// TestOTelMetricsWaitRecordsOneLatencyObservation covers the other half of
// property 12: Wait records exactly one latency observation per call.
func TestOTelMetricsWaitRecordsOneLatencyObservation(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOTelMetrics()
	require.NoError(t, err)

	loop := NewLoop(WithMetrics(m))

	_, err = Wait(loop, Resolved(struct{}{}))
	require.NoError(t, err)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "promise.loop.wait_latency_ms")
	require.NotNil(t, metric)

	hist, ok := metric.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected Histogram type")
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestOTelMetricsWaitErrorRecordsErrorCounter(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOTelMetrics()
	require.NoError(t, err)

	loop := NewLoop(WithMetrics(m))

	_, err = Wait(loop, Rejected[struct{}](errors.New("boom")))
	require.Error(t, err)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "promise.loop.wait_errors")
	require.NotNil(t, metric)

	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum type")
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestOTelMetricsRecordTurnCountsEachFiredEvent(t *testing.T) {
	reader := setupMetricsTest(t)

	m, err := newOTelMetrics()
	require.NoError(t, err)

	loop := NewLoop(WithMetrics(m))

	_, err = Wait(loop, Then(Yield(), func(struct{}) (struct{}, error) {
		return struct{}{}, nil
	}))
	require.NoError(t, err)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "promise.loop.turns")
	require.NotNil(t, metric)

	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum type")
	require.NotEmpty(t, sum.DataPoints)
	assert.GreaterOrEqual(t, sum.DataPoints[0].Value, int64(1))
}
