package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records atomexpr metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordParse records an expression parse with its duration and atom count.
	RecordParse(ctx context.Context, success bool, duration time.Duration, atoms int)

	// RecordEvaluation records one evaluation of a (possibly unnamed) expression.
	RecordEvaluation(ctx context.Context, rule string, result int, duration time.Duration)

	// RecordAtomCall records one invocation of the atom processing callback.
	RecordAtomCall(ctx context.Context, failed bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	parses       metric.Int64Counter
	parseErrors  metric.Int64Counter
	parseLatency metric.Float64Histogram
	atomsParsed  metric.Int64Histogram
	evaluations  metric.Int64Counter
	evalLatency  metric.Float64Histogram
	atomCalls    metric.Int64Counter
	atomErrors   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.Meter("atomexpr"))
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates the instruments on the given meter.
func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	parses, err := meter.Int64Counter("atomexpr.parse.count",
		metric.WithDescription("Number of expression parses"),
	)
	if err != nil {
		return nil, err
	}

	parseErrors, err := meter.Int64Counter("atomexpr.parse.errors",
		metric.WithDescription("Number of failed expression parses"),
	)
	if err != nil {
		return nil, err
	}

	parseLatency, err := meter.Float64Histogram("atomexpr.parse.latency_ms",
		metric.WithDescription("Expression parse latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	atomsParsed, err := meter.Int64Histogram("atomexpr.parse.atoms",
		metric.WithDescription("Atoms per parsed expression"),
	)
	if err != nil {
		return nil, err
	}

	evaluations, err := meter.Int64Counter("atomexpr.eval.count",
		metric.WithDescription("Number of expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("atomexpr.eval.latency_ms",
		metric.WithDescription("Expression evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	atomCalls, err := meter.Int64Counter("atomexpr.atom.calls",
		metric.WithDescription("Number of atom processing callback invocations"),
	)
	if err != nil {
		return nil, err
	}

	atomErrors, err := meter.Int64Counter("atomexpr.atom.errors",
		metric.WithDescription("Number of failed atom processing callbacks"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		parses:       parses,
		parseErrors:  parseErrors,
		parseLatency: parseLatency,
		atomsParsed:  atomsParsed,
		evaluations:  evaluations,
		evalLatency:  evalLatency,
		atomCalls:    atomCalls,
		atomErrors:   atomErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderWithMeter returns a MetricsRecorder bound to a specific meter.
// Unlike NewMetricsRecorder it does not share instruments with other callers.
func NewMetricsRecorderWithMeter(meter metric.Meter) (MetricsRecorder, error) {
	m, err := newOtelMetrics(meter)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordParse records an expression parse.
func (m *otelMetrics) RecordParse(ctx context.Context, success bool, duration time.Duration, atoms int) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))

	m.parses.Add(ctx, 1, attrs)
	m.parseLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if !success {
		m.parseErrors.Add(ctx, 1)
		return
	}
	m.atomsParsed.Record(ctx, int64(atoms))
}

// RecordEvaluation records an evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, rule string, result int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("rule", rule),
		attribute.Bool("matched", result != 0),
	}
	m.evaluations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.evalLatency.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
}

// RecordAtomCall records an atom callback invocation.
func (m *otelMetrics) RecordAtomCall(ctx context.Context, failed bool) {
	m.atomCalls.Add(ctx, 1)
	if failed {
		m.atomErrors.Add(ctx, 1)
	}
}
