package telemetry

import (
	"context"
	"fmt"
	"sync"

	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/stordev/sitescout/internal/config"
)

var (
	initOnce  sync.Once
	traceProv *sdktrace.TracerProvider
	meterProv *metric.MeterProvider
	initErr   error
)

// InitTelemetry sets up tracing (exported to Google Cloud Trace when a
// project is configured) and bridges OpenTelemetry metrics onto the same
// Prometheus registry the promauto collectors use. Safe to call more than
// once; only the first call does work.
func InitTelemetry(ctx context.Context, cfg *config.Config) (*sdktrace.TracerProvider, *metric.MeterProvider, error) {
	initOnce.Do(func() {
		res, err := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(cfg.Application.ServiceName),
				semconv.ServiceVersion(cfg.Application.Version),
				semconv.CloudAccountID(cfg.Application.ProjectNumber),
				semconv.CloudRegion(cfg.Application.Region),
			),
		)
		if err != nil {
			initErr = fmt.Errorf("create telemetry resource: %w", err)
			return
		}

		var traceExporter sdktrace.SpanExporter
		if cfg.Application.ProjectID != "" {
			traceExporter, err = texporter.New(texporter.WithProjectID(cfg.Application.ProjectID))
			if err != nil {
				initErr = fmt.Errorf("create google trace exporter: %w", err)
				return
			}
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		}
		if traceExporter != nil {
			opts = append(opts, sdktrace.WithBatcher(traceExporter))
		}

		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(
			propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
		)

		// OTel metrics land on the same registry as the promauto collectors
		// so /metrics serves both.
		promExporter, err := otelprom.New(
			otelprom.WithRegisterer(prometheus.DefaultRegisterer),
		)
		if err != nil {
			initErr = fmt.Errorf("create prometheus exporter: %w", err)
			return
		}

		mp := metric.NewMeterProvider(
			metric.WithResource(res),
			metric.WithReader(promExporter),
		)
		otel.SetMeterProvider(mp)

		traceProv = tp
		meterProv = mp
	})
	return traceProv, meterProv, initErr
}
