// Package telemetry wires OpenTelemetry tracing/metrics and exposes them
// over a small gin HTTP surface (/metrics, /healthz), mirroring the
// tracer+meter+Prometheus-exporter layering used elsewhere in the
// surrounding services.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ErrNilContext is returned by Init when ctx is nil.
var ErrNilContext = errors.New("telemetry: nil context")

// Config controls the telemetry stack. The zero value is invalid; use
// DefaultConfig for sensible defaults.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// MetricsAddr is the listen address for the /metrics and /healthz HTTP
	// surface, e.g. ":9090". Empty disables the HTTP surface entirely
	// (tracer/meter are still installed process-wide).
	MetricsAddr string
}

// DefaultConfig returns opinionated defaults for sorbet-lsp: the metrics
// surface listens on :9090.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "sorbet-lsp",
		ServiceVersion: "dev",
		MetricsAddr:    ":9090",
	}
}

// Shutdown stops the telemetry stack: it flushes the meter provider and, if
// an HTTP surface was started, shuts down its server.
type Shutdown func(context.Context) error

// Init installs a process-wide TracerProvider and MeterProvider (Prometheus
// exporter) and, if cfg.MetricsAddr is non-empty, starts a gin HTTP server
// exposing /metrics and /healthz. The returned Shutdown must be called
// during graceful exit.
func Init(ctx context.Context, cfg Config) (Shutdown, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	res := resource.NewWithAttributes("",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	exporter, err := promexporter.New()
	if err != nil {
		return nil, fmt.Errorf("telemetry: create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		router := gin.New()
		router.Use(gin.Recovery(), otelgin.Middleware(cfg.ServiceName))
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: router}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				// Nothing to log to here without importing internal/logging and
				// creating an import cycle risk; callers that care about this
				// failure should probe /healthz themselves.
				_ = err
			}
		}()
	}

	shutdown := func(ctx context.Context) error {
		var errs []error
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}
	return shutdown, nil
}

// Tracer and Meter names used process-wide.
const (
	instrumentationName = "sorbet-lsp/pipeline"
)

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	slowPathLatency metric.Float64Histogram
	slowPathTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initPipelineMetrics() error {
	metricsOnce.Do(func() {
		var err error
		slowPathLatency, err = meter.Float64Histogram(
			"sorbet_lsp_slow_path_duration_seconds",
			metric.WithDescription("Duration of a full slow-path reanalysis pass"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		slowPathTotal, err = meter.Int64Counter(
			"sorbet_lsp_slow_path_total",
			metric.WithDescription("Total number of slow-path reanalysis passes"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// StartSlowPathSpan starts a span around one slow-path invocation.
func StartSlowPathSpan(ctx context.Context, changedFileCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "pipeline.SlowPath",
		trace.WithAttributes(attribute.Int("sorbet_lsp.changed_files", changedFileCount)),
	)
}

// StartPublishSpan starts a span around one diagnostics drain+publish
// cycle, tagged with the batch identifier (internal/diagnostics.NewBatchID)
// that correlates this span with the cycle's log lines.
func StartPublishSpan(ctx context.Context, batchID string, fileCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "diagnostics.publish",
		trace.WithAttributes(
			attribute.String("sorbet_lsp.batch_id", batchID),
			attribute.Int("sorbet_lsp.file_count", fileCount),
		),
	)
}

// RecordSlowPath records the outcome of one slow-path invocation. Failures
// to initialize the metric instruments are swallowed, matching the
// reference implementation's tolerance for a telemetry stack that never
// got wired up (e.g. in tests).
func RecordSlowPath(ctx context.Context, duration time.Duration, success bool) {
	if err := initPipelineMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	slowPathLatency.Record(ctx, duration.Seconds(), attrs)
	slowPathTotal.Add(ctx, 1, attrs)
}
