package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestHistogramObservation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	histograms := []struct {
		name string
		h    metric.Float64Histogram
	}{
		{"elocute.transcription.duration", m.TranscriptionDuration},
		{"elocute.scoring.duration", m.ScoringDuration},
	}
	for _, h := range histograms {
		h.h.Record(ctx, 0.42)
	}

	rm := collect(t, reader)
	for _, h := range histograms {
		md := findMetric(rm, h.name)
		if md == nil {
			t.Errorf("metric %q not found after recording", h.name)
			continue
		}
		hist, ok := md.Data.(metricdata.Histogram[float64])
		if !ok {
			t.Errorf("metric %q is not a float64 histogram", h.name)
			continue
		}
		if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
			t.Errorf("metric %q datapoints = %+v, want one observation", h.name, hist.DataPoints)
		}
	}
}

func TestRecognizerCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRecognizerRequest(ctx, "mock", "ok")
	m.RecordRecognizerRequest(ctx, "mock", "error")
	m.RecordRecognizerError(ctx, "mock")

	rm := collect(t, reader)

	reqs := findMetric(rm, "elocute.recognizer.requests")
	if reqs == nil {
		t.Fatal("requests metric not found")
	}
	sum, ok := reqs.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("requests metric is not an int64 sum")
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Errorf("request total = %d, want 2", total)
	}
	// One datapoint per status attribute.
	if len(sum.DataPoints) != 2 {
		t.Errorf("request datapoints = %d, want 2 (one per status)", len(sum.DataPoints))
	}

	errs := findMetric(rm, "elocute.recognizer.errors")
	if errs == nil {
		t.Fatal("errors metric not found")
	}
}

func TestActiveEvaluationsUpDown(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ActiveEvaluations.Add(ctx, 1)
	m.ActiveEvaluations.Add(ctx, 1)
	m.ActiveEvaluations.Add(ctx, -1)

	rm := collect(t, reader)
	md := findMetric(rm, "elocute.active_evaluations")
	if md == nil {
		t.Fatal("active_evaluations metric not found")
	}
	sum, ok := md.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("active_evaluations is not an int64 sum")
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("active evaluations = %+v, want value 1", sum.DataPoints)
	}
}
