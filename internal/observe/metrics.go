// Package observe provides application observability for Ansuz: OpenTelemetry
// metrics with a Prometheus exporter bridge (scraped at /metrics) and HTTP
// middleware that records request durations.
//
// Best-effort operations (upload cleanup, search upserts, SSE publishes) are
// not allowed to fail requests, but their failures are not silent either:
// they land in [Metrics.BestEffortFailures].
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Ansuz metrics.
const meterName = "github.com/starford/ansuz"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// AnalysisDuration tracks image-analysis latency. Attribute: source
	// ("gemini", "local", "synthetic").
	AnalysisDuration metric.Float64Histogram

	// AnalysisRequests counts image-analysis requests. Attributes: source,
	// status ("ok", "error").
	AnalysisRequests metric.Int64Counter

	// ProviderErrors counts failures of external capabilities that were
	// recovered by fallback. Attribute: provider ("gemini", "detector",
	// "ocr", "decode").
	ProviderErrors metric.Int64Counter

	// BestEffortFailures counts failed fire-and-forget operations.
	// Attribute: op ("upload_cleanup", "search_upsert", "search_rebuild").
	BestEffortFailures metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time. Attributes:
	// method, path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries in seconds. The upper
// buckets cover cloud model calls, which routinely take several seconds.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnalysisDuration, err = m.Float64Histogram("ansuz.analysis.duration",
		metric.WithDescription("Latency of image analysis by source."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AnalysisRequests, err = m.Int64Counter("ansuz.analysis.requests",
		metric.WithDescription("Image-analysis requests by source and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("ansuz.provider.errors",
		metric.WithDescription("Recovered provider failures by provider."),
	); err != nil {
		return nil, err
	}
	if met.BestEffortFailures, err = m.Int64Counter("ansuz.besteffort.failures",
		metric.WithDescription("Failed fire-and-forget operations by op."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("ansuz.http.request.duration",
		metric.WithDescription("HTTP request processing time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordAnalysis records one analysis request outcome.
func (m *Metrics) RecordAnalysis(ctx context.Context, source, status string, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)
	m.AnalysisRequests.Add(ctx, 1, attrs)
	m.AnalysisDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("source", source),
	))
}

// RecordProviderError records a recovered provider failure.
func (m *Metrics) RecordProviderError(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.ProviderErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordBestEffortFailure records a failed fire-and-forget operation.
func (m *Metrics) RecordBestEffortFailure(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.BestEffortFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
	))
}
