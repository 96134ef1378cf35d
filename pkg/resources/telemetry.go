package resources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// StopFn releases a resource, giving it at most timeout to drain.
type StopFn func(ctx context.Context, timeout time.Duration)

func noopStop(context.Context, time.Duration) {}

// Observe installs the OTLP trace, metric and log providers and bridges the
// process logger into OTel logs. With telemetry disabled the global no-op
// providers stay in place.
func Observe(ctx context.Context, cfg *Config) (context.Context, StopFn, error) {
	if !cfg.OTelEnabled {
		return ctx, noopStop, nil
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.Name),
		attribute.String("service.version", cfg.Version),
		attribute.String("deployment.environment", cfg.Env),
	)

	// Si la app corre en Docker (misma red del compose), usar "otel-collector:4317"
	traceExp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTelEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return ctx, noopStop, fmt.Errorf("failed to create the OTLP trace exporter: %w", err)
	}

	metricExp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTelEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return ctx, noopStop, fmt.Errorf("failed to create the OTLP metric exporter: %w", err)
	}

	logExp, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(cfg.OTelEndpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return ctx, noopStop, fmt.Errorf("failed to create the OTLP log exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp), sdktrace.WithResource(res))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)), sdkmetric.WithResource(res))
	lp := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)), sdklog.WithResource(res))

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	global.SetLoggerProvider(lp)

	err = runtime.Start(runtime.WithMinimumReadMemStatsInterval(15 * time.Second))
	if err != nil {
		return ctx, noopStop, fmt.Errorf("failed to start runtime metrics: %w", err)
	}

	log.Logger = log.Logger.Hook(NewLogBridge(cfg.Name, cfg.Version))

	stopFn := func(ctx context.Context, timeout time.Duration) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		err := errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx), lp.Shutdown(ctx))
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("stage", "shut down").Str("component", "telemetry").Msg("failed to flush telemetry")
		}
	}

	return log.Logger.WithContext(ctx), stopFn, nil
}
