// Package telemetry wires the loader's OpenTelemetry instruments to an
// exporter chosen by name.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Exporter names.
const (
	None   = "none"
	Stdout = "stdout"
	OTLP   = "otlp"
)

// Config selects exporters. Empty names mean None.
type Config struct {
	ServiceName string
	Version     string
	Metrics     string
	Traces      string
	// Writer receives stdout exporter output. Defaults to os.Stderr so
	// command output on stdout stays clean.
	Writer io.Writer
}

// Telemetry holds the configured providers.
type Telemetry struct {
	tracer trace.Tracer
	meter  metric.Meter
	tp     *sdktrace.TracerProvider
	mp     *sdkmetric.MeterProvider
}

// Setup builds providers for cfg. With both exporters set to None the
// returned Telemetry hands out no-op instruments.
func Setup(ctx context.Context, cfg Config) (*Telemetry, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ytcipher"
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}

	t := &Telemetry{
		tracer: tracenoop.NewTracerProvider().Tracer(cfg.ServiceName),
		meter:  noop.NewMeterProvider().Meter(cfg.ServiceName),
	}
	if isNone(cfg.Metrics) && isNone(cfg.Traces) {
		return t, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if !isNone(cfg.Traces) {
		exp, err := NewSpanExporter(ctx, cfg.Traces, cfg.Writer)
		if err != nil {
			return nil, err
		}
		t.tp = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(exp),
		)
		t.tracer = t.tp.Tracer(cfg.ServiceName)
	}

	if !isNone(cfg.Metrics) {
		reader, err := NewMetricReader(ctx, cfg.Metrics, cfg.Writer)
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, err
		}
		t.mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
		t.meter = t.mp.Meter(cfg.ServiceName)
	}
	return t, nil
}

func isNone(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == "" || n == None
}

// NewSpanExporter creates a span exporter by name: stdout or otlp.
func NewSpanExporter(ctx context.Context, name string, w io.Writer) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(name) {
	case Stdout:
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	case OTLP:
		if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" && os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT") == "" {
			return nil, errors.New("OTLP endpoint not configured: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
		}
		return otlptracegrpc.New(ctx)
	default:
		return nil, fmt.Errorf("unknown trace exporter: %q", name)
	}
}

// NewMetricReader creates a periodic metric reader by name: stdout or otlp.
// Pending data is exported on Shutdown.
func NewMetricReader(ctx context.Context, name string, w io.Writer) (sdkmetric.Reader, error) {
	var (
		exp sdkmetric.Exporter
		err error
	)
	switch strings.ToLower(name) {
	case Stdout:
		exp, err = stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
	case OTLP:
		if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" && os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT") == "" {
			return nil, errors.New("OTLP metrics endpoint not configured: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
		}
		exp, err = otlpmetricgrpc.New(ctx)
	default:
		return nil, fmt.Errorf("unknown metrics exporter: %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s metrics exporter: %w", name, err)
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}

// Tracer returns the configured tracer.
func (t *Telemetry) Tracer() trace.Tracer { return t.tracer }

// Meter returns the configured meter.
func (t *Telemetry) Meter() metric.Meter { return t.meter }

// Shutdown flushes and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
