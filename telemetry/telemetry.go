// Package telemetry installs an OTLP trace exporter as the global tracer provider,
// so the spans emitted by statemachine reach a collector.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/amp-labs/amp-finite/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

const (
	defaultServiceName    = "fsm"
	defaultServiceVersion = "1.0.0"
	defaultTimeout        = 5 * time.Second
)

var ErrInvalidEnv = errors.New("invalid telemetry environment variable")

// Config holds the OpenTelemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Enabled        bool
	Timeout        time.Duration
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// LoadConfigFromEnv reads the standard OTEL_* variables. An explicit endpoint
// implies Enabled unless OTEL_ENABLED says otherwise.
func LoadConfigFromEnv(ctx context.Context, runningEnv string) (*Config, error) {
	serviceName := logger.GetSubsystem(ctx)
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	cfg := &Config{
		ServiceName:    envString("OTEL_SERVICE_NAME", serviceName),
		ServiceVersion: envString("OTEL_SERVICE_VERSION", defaultServiceVersion),
		Environment:    runningEnv,
		Endpoint:       envString("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", ""),
		Timeout:        defaultTimeout,
	}

	cfg.Enabled = cfg.Endpoint != ""

	if raw, ok := os.LookupEnv("OTEL_ENABLED"); ok && raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: OTEL_ENABLED=%q", ErrInvalidEnv, raw)
		}

		cfg.Enabled = enabled
	}

	if raw, ok := os.LookupEnv("OTEL_EXPORTER_OTLP_TRACES_TIMEOUT"); ok && raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: OTEL_EXPORTER_OTLP_TRACES_TIMEOUT=%q", ErrInvalidEnv, raw)
		}

		cfg.Timeout = timeout
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	return fallback
}

// Initialize sets up OpenTelemetry tracing with the given configuration and
// returns the matching shutdown hook. A disabled config yields a no-op hook.
func Initialize(ctx context.Context, config *Config) (ShutdownFunc, error) {
	if config == nil || !config.Enabled {
		slog.Debug("OpenTelemetry tracing is disabled")

		return noopShutdown, nil
	}

	if config.Endpoint == "" {
		slog.Warn("OpenTelemetry endpoint not configured, tracing will be disabled")

		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(config.Endpoint),
		otlptracehttp.WithTimeout(config.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("OpenTelemetry tracing initialized",
		"service", config.ServiceName,
		"version", config.ServiceVersion,
		"environment", config.Environment,
		"endpoint", config.Endpoint,
	)

	return func(ctx context.Context) error {
		slog.Debug("Shutting down OpenTelemetry tracer provider")

		return provider.Shutdown(ctx)
	}, nil
}
