package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/topi314/tint"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/tillfield/propsheet/internal/ver"
	"github.com/tillfield/propsheet/propsheet"
)

func setupOtel(cfg *propsheet.OtelConfig, version ver.Version) error {
	if cfg.Trace != nil {
		if err := setupTracing(cfg, version); err != nil {
			return err
		}
	}
	if cfg.Metrics != nil {
		if err := setupMetrics(cfg, version); err != nil {
			return err
		}
	}
	return nil
}

func setupTracing(cfg *propsheet.OtelConfig, version ver.Version) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Trace.Endpoint),
	}
	if cfg.Trace.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(newResource(cfg, version)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return nil
}

func setupMetrics(cfg *propsheet.OtelConfig, version ver.Version) error {
	exp, err := prometheus.New()
	if err != nil {
		return err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exp),
		sdkmetric.WithResource(newResource(cfg, version)),
	)
	otel.SetMeterProvider(mp)

	go func() {
		server := &http.Server{
			Addr:    cfg.Metrics.ListenAddr,
			Handler: promhttp.Handler(),
		}
		if err := server.ListenAndServe(); err != nil {
			slog.Error("failed to serve metrics", tint.Err(err))
		}
	}()
	return nil
}

func newResource(cfg *propsheet.OtelConfig, version ver.Version) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(propsheet.Name),
		semconv.ServiceNamespace(propsheet.Namespace),
		semconv.ServiceInstanceID(cfg.InstanceID),
		semconv.ServiceVersion(version.Version),
	)
}
