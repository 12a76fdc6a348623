package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"jitu/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTelPrometheus(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.EnableTracing = true
	cfg.TraceExporter = "none"

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordAnalysisMetrics(ctx, metrics, "detected", 10, 2, 150*time.Millisecond, nil)
	RecordAnalysisMetrics(ctx, metrics, "confirmed", 3, 3, time.Millisecond, errors.New("boom"))
	metrics.MappingDetections.Add(ctx, 1)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "jitu_rows_ingested_total"), "rows ingested counter exported")
	assert.True(t, strings.Contains(body, "jitu_analysis_errors_total"), "error counter exported")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(shutdownCtx))
}

func TestInitializeOTelDisabled(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.EnableTracing = false
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordAnalysisMetrics(context.Background(), metrics, "detected", 1, 0, time.Millisecond, nil)
	RecordAnalysisMetrics(context.Background(), nil, "detected", 1, 0, time.Millisecond, nil)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTelRejectsUnknownExporter(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.MetricExporter = "statsd"
	_, err := InitializeOTel(cfg, discardLogger())
	assert.Error(t, err)

	cfg = config.Default().Telemetry
	cfg.EnableTracing = true
	cfg.TraceExporter = "jaeger"
	_, err = InitializeOTel(cfg, discardLogger())
	assert.Error(t, err)
}

func TestTraceCorrelation(t *testing.T) {
	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	// the global provider may be a no-op, in which case no trace ID exists
	if span.SpanContext().IsValid() {
		assert.Len(t, TraceIDFromContext(ctx), 32)
	} else {
		assert.Empty(t, TraceIDFromContext(ctx))
	}
	RecordError(ctx, errors.New("ignored"))
	AddSpanEvent(ctx, "event")
}
