// Package observe provides application-wide observability primitives for
// elocute: OpenTelemetry metrics, tracing, and structured-logging helpers.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still
// be scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all elocute metrics.
const meterName = "github.com/elocute/elocute"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// TranscriptionDuration tracks recogniser inference latency.
	TranscriptionDuration metric.Float64Histogram

	// ScoringDuration tracks alignment and metric computation latency.
	ScoringDuration metric.Float64Histogram

	// --- Counters ---

	// RecognizerRequests counts recognition calls. Use with attributes:
	//   attribute.String("recognizer", ...), attribute.String("status", ...)
	RecognizerRequests metric.Int64Counter

	// RecognizerErrors counts failed recognition calls. Use with attribute:
	//   attribute.String("recognizer", ...)
	RecognizerErrors metric.Int64Counter

	// HighlightFallbacks counts evaluations that degraded to unhighlighted
	// output after a span-building failure.
	HighlightFallbacks metric.Int64Counter

	// SessionsStored counts practice sessions written to the store.
	SessionsStored metric.Int64Counter

	// --- Gauges ---

	// ActiveEvaluations tracks the number of in-flight evaluations.
	ActiveEvaluations metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). The wide
// upper range accommodates whole-take batch transcription, which can run for
// tens of seconds on CPU.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TranscriptionDuration, err = m.Float64Histogram("elocute.transcription.duration",
		metric.WithDescription("Latency of recogniser inference."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ScoringDuration, err = m.Float64Histogram("elocute.scoring.duration",
		metric.WithDescription("Latency of alignment and metric computation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.RecognizerRequests, err = m.Int64Counter("elocute.recognizer.requests",
		metric.WithDescription("Total recognition calls by recognizer and status."),
	); err != nil {
		return nil, err
	}
	if met.RecognizerErrors, err = m.Int64Counter("elocute.recognizer.errors",
		metric.WithDescription("Total failed recognition calls by recognizer."),
	); err != nil {
		return nil, err
	}
	if met.HighlightFallbacks, err = m.Int64Counter("elocute.highlight.fallbacks",
		metric.WithDescription("Evaluations that fell back to unhighlighted output."),
	); err != nil {
		return nil, err
	}
	if met.SessionsStored, err = m.Int64Counter("elocute.sessions.stored",
		metric.WithDescription("Practice sessions written to the store."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveEvaluations, err = m.Int64UpDownCounter("elocute.active_evaluations",
		metric.WithDescription("Number of in-flight evaluations."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordRecognizerRequest records a recognition call with the standard
// attribute set.
func (m *Metrics) RecordRecognizerRequest(ctx context.Context, recognizer, status string) {
	m.RecognizerRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("recognizer", recognizer),
			attribute.String("status", status),
		),
	)
}

// RecordRecognizerError records a failed recognition call.
func (m *Metrics) RecordRecognizerError(ctx context.Context, recognizer string) {
	m.RecognizerErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("recognizer", recognizer)),
	)
}
