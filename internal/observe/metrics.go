// Package observe provides application-wide observability primitives for
// crmgate: OpenTelemetry metrics, tracing helpers, and trace-aware structured
// logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via a standard /metrics endpoint. A package-level default [Metrics]
// instance ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all crmgate metrics.
const meterName = "github.com/crmgate/crmgate"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// APIRequestDuration tracks upstream CRM API call latency. Use with
	// attributes: attribute.String("function", ...), attribute.String("status", ...)
	APIRequestDuration metric.Float64Histogram

	// RateLimitWait tracks time spent waiting for a rate-limit slot before
	// each CRM API call.
	RateLimitWait metric.Float64Histogram

	// ToolDuration tracks MCP tool handler latency. Use with attribute:
	//   attribute.String("tool", ...)
	ToolDuration metric.Float64Histogram

	// APIRequests counts upstream CRM API calls. Use with attributes:
	//   attribute.String("function", ...), attribute.String("status", ...)
	APIRequests metric.Int64Counter

	// APIErrors counts upstream CRM API failures. Use with attributes:
	//   attribute.String("function", ...), attribute.String("code", ...)
	APIErrors metric.Int64Counter

	// ToolCalls counts MCP tool invocations. Use with attributes:
	//   attribute.String("tool", ...), attribute.String("status", ...)
	ToolCalls metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// a remote REST API that answers in tens of milliseconds to a few seconds,
// plus rate-limit stalls of up to a minute.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.APIRequestDuration, err = m.Float64Histogram("crmgate.api.request.duration",
		metric.WithDescription("Latency of upstream CRM API calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RateLimitWait, err = m.Float64Histogram("crmgate.api.ratelimit.wait",
		metric.WithDescription("Time spent waiting for a rate-limit slot."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ToolDuration, err = m.Float64Histogram("crmgate.tool.duration",
		metric.WithDescription("Latency of MCP tool handler execution."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.APIRequests, err = m.Int64Counter("crmgate.api.requests",
		metric.WithDescription("Total upstream CRM API calls by function and status."),
	); err != nil {
		return nil, err
	}
	if met.APIErrors, err = m.Int64Counter("crmgate.api.errors",
		metric.WithDescription("Total upstream CRM API failures by function and error code."),
	); err != nil {
		return nil, err
	}
	if met.ToolCalls, err = m.Int64Counter("crmgate.tool.calls",
		metric.WithDescription("Total MCP tool invocations by tool name and status."),
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

// RecordAPIRequest records one upstream CRM API call with the standard
// attribute set. durationSec covers the HTTP round-trip, not the rate-limit
// wait.
func (m *Metrics) RecordAPIRequest(ctx context.Context, function, status string, durationSec float64) {
	attrs := metric.WithAttributes(
		attribute.String("function", function),
		attribute.String("status", status),
	)
	m.APIRequests.Add(ctx, 1, attrs)
	m.APIRequestDuration.Record(ctx, durationSec, attrs)
}

// RecordAPIError records one upstream CRM API failure.
func (m *Metrics) RecordAPIError(ctx context.Context, function, code string) {
	m.APIErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("function", function),
			attribute.String("code", code),
		),
	)
}

// RecordToolCall records one MCP tool invocation.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string, durationSec float64) {
	m.ToolCalls.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		),
	)
	m.ToolDuration.Record(ctx, durationSec,
		metric.WithAttributes(attribute.String("tool", tool)),
	)
}
