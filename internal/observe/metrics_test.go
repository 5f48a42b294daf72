package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func testMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
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

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func hasMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func TestRecordAnalysis(t *testing.T) {
	m, reader := testMetrics(t)

	m.RecordAnalysis(context.Background(), "local", "ok", 0.12)

	rm := collect(t, reader)
	if !hasMetric(rm, "ansuz.analysis.requests") {
		t.Error("analysis requests counter not recorded")
	}
	if !hasMetric(rm, "ansuz.analysis.duration") {
		t.Error("analysis duration histogram not recorded")
	}
}

func TestRecordProviderErrorAndBestEffort(t *testing.T) {
	m, reader := testMetrics(t)

	m.RecordProviderError(context.Background(), "gemini")
	m.RecordBestEffortFailure(context.Background(), "upload_cleanup")

	rm := collect(t, reader)
	if !hasMetric(rm, "ansuz.provider.errors") {
		t.Error("provider errors counter not recorded")
	}
	if !hasMetric(rm, "ansuz.besteffort.failures") {
		t.Error("best-effort failures counter not recorded")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	// Must not panic.
	m.RecordAnalysis(ctx, "local", "ok", 0.1)
	m.RecordProviderError(ctx, "ocr")
	m.RecordBestEffortFailure(ctx, "search_upsert")
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	m, reader := testMetrics(t)

	handler := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTeapot {
		t.Fatalf("status = %d, middleware must not alter responses", w.Code)
	}

	rm := collect(t, reader)
	if !hasMetric(rm, "ansuz.http.request.duration") {
		t.Error("request duration not recorded")
	}
}
