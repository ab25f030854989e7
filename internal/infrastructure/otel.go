package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "whodash"
	ServiceVersion = "v1.0.0"
	MeterName      = "whodash"
)

// OTelConfig holds OpenTelemetry configuration.
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	EnableTracing  bool
	EnableMetrics  bool
	SampleRatio    float64
}

// OTelProviders holds the initialized OpenTelemetry providers.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns the default OpenTelemetry configuration.
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		EnableTracing:  true,
		EnableMetrics:  true,
		SampleRatio:    1.0,
	}
}

// InitializeOTel initializes tracing (stdout exporter) and metrics
// (Prometheus exporter).
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", instanceID()),
	)

	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
		)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetTracerProvider(tp)
	}

	if cfg.EnableMetrics {
		exporter, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
		providers.PrometheusHTTP = promhttp.Handler()
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "observability initialized",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// Shutdown gracefully shuts down the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}
	return nil
}

// DashboardMetrics holds the application-specific instruments.
type DashboardMetrics struct {
	DatasetLoadsTotal   metric.Int64Counter
	DatasetLoadDuration metric.Float64Histogram
	DatasetCacheHits    metric.Int64ObservableCounter
	DatasetCacheMisses  metric.Int64ObservableCounter
	ReportBuildsTotal   metric.Int64Counter
	ReportBuildDuration metric.Float64Histogram
	ForecastFailures    metric.Int64Counter
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// NewDashboardMetrics creates the dashboard's instruments on meter.
func NewDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	datasetLoads, err := meter.Int64Counter(
		"dataset_loads_total",
		metric.WithDescription("Total number of dataset loads, including cache hits"),
	)
	if err != nil {
		return nil, err
	}

	datasetLoadDuration, err := meter.Float64Histogram(
		"dataset_load_duration_seconds",
		metric.WithDescription("Dataset load duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64ObservableCounter(
		"dataset_cache_hits_total",
		metric.WithDescription("Total number of dataset cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64ObservableCounter(
		"dataset_cache_misses_total",
		metric.WithDescription("Total number of dataset cache misses"),
	)
	if err != nil {
		return nil, err
	}

	reportBuilds, err := meter.Int64Counter(
		"report_builds_total",
		metric.WithDescription("Total number of dashboard report builds"),
	)
	if err != nil {
		return nil, err
	}

	reportBuildDuration, err := meter.Float64Histogram(
		"report_build_duration_seconds",
		metric.WithDescription("Dashboard report build duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	forecastFailures, err := meter.Int64Counter(
		"forecast_failures_total",
		metric.WithDescription("Total number of per-series forecast failures"),
	)
	if err != nil {
		return nil, err
	}

	httpRequests, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &DashboardMetrics{
		DatasetLoadsTotal:   datasetLoads,
		DatasetLoadDuration: datasetLoadDuration,
		DatasetCacheHits:    cacheHits,
		DatasetCacheMisses:  cacheMisses,
		ReportBuildsTotal:   reportBuilds,
		ReportBuildDuration: reportBuildDuration,
		ForecastFailures:    forecastFailures,
		HTTPRequestsTotal:   httpRequests,
		HTTPRequestDuration: httpDuration,
	}, nil
}

// RegisterCacheStats wires the dataset cache's cumulative hit/miss
// counts into the observable cache counters.
func RegisterCacheStats(meter metric.Meter, m *DashboardMetrics, stats func() (hits, misses uint64)) error {
	if m == nil {
		return nil
	}
	_, err := meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		hits, misses := stats()
		o.ObserveInt64(m.DatasetCacheHits, int64(hits))
		o.ObserveInt64(m.DatasetCacheMisses, int64(misses))
		return nil
	}, m.DatasetCacheHits, m.DatasetCacheMisses)
	return err
}

// RecordReportBuild records metrics for one dashboard build.
func RecordReportBuild(ctx context.Context, m *DashboardMetrics, country string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("country", country),
		attribute.String("status", status),
	)
	m.ReportBuildsTotal.Add(ctx, 1, attrs)
	m.ReportBuildDuration.Record(ctx, duration.Seconds(), attrs)
}

func instanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}
