package observe

import (
	"context"
	"testing"

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

func TestRecordAPIRequest(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAPIRequest(ctx, "CreateContact", "ok", 0.042)
	m.RecordAPIRequest(ctx, "CreateContact", "error", 0.013)

	rm := collect(t, reader)

	counter := findMetric(rm, "crmgate.api.requests")
	if counter == nil {
		t.Fatal("crmgate.api.requests not found")
	}
	sum, ok := counter.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("crmgate.api.requests has unexpected data type %T", counter.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Errorf("api.requests total = %d, want 2", total)
	}

	hist := findMetric(rm, "crmgate.api.request.duration")
	if hist == nil {
		t.Fatal("crmgate.api.request.duration not found")
	}
	hd, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration has unexpected data type %T", hist.Data)
	}
	var count uint64
	for _, dp := range hd.DataPoints {
		count += dp.Count
	}
	if count != 2 {
		t.Errorf("duration observation count = %d, want 2", count)
	}
}

func TestRecordAPIError(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordAPIError(context.Background(), "CreateContact", "InvalidParameter")

	rm := collect(t, reader)
	counter := findMetric(rm, "crmgate.api.errors")
	if counter == nil {
		t.Fatal("crmgate.api.errors not found")
	}
	sum, ok := counter.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("crmgate.api.errors has unexpected data type %T", counter.Data)
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("api.errors data points = %+v, want one point with value 1", sum.DataPoints)
	}
}

func TestRecordToolCall(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordToolCall(context.Background(), "create_contact", "ok", 0.1)

	rm := collect(t, reader)
	if findMetric(rm, "crmgate.tool.calls") == nil {
		t.Error("crmgate.tool.calls not found")
	}
	if findMetric(rm, "crmgate.tool.duration") == nil {
		t.Error("crmgate.tool.duration not found")
	}
}
