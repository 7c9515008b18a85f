package rocket

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/svonstrauss/rocket-basics"

// TracingConfig governs how InitTracing sets up the global tracer provider.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Writer      io.Writer // os.Stderr if nil
	Pretty      bool
}

// InitTracing installs a tracer provider exporting spans to the configured
// writer, or a no-op provider when disabled. The returned function flushes
// and stops the provider.
func InitTracing(ctx context.Context, cfg TracingConfig, logger kitlog.Logger) (func(context.Context) error, error) {
	logger = kitlog.With(loggerOrNop(logger), "subsys", "tracing")
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		logger.Log("level", "debug", "status", "disabled")
		return func(context.Context) error { return nil }, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "rocket-basics"
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := []stdouttrace.Option{stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps()}
	if cfg.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exp, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("stdout exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	logger.Log("level", "info", "status", "enabled", "service_name", cfg.ServiceName)
	return tp.Shutdown, nil
}

// ShutdownTracing flushes the spans within five seconds, logging any failure.
func ShutdownTracing(ctx context.Context, shutdown func(context.Context) error, logger kitlog.Logger) {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		loggerOrNop(logger).Log("level", "warning", "subsys", "tracing", "status", "shutdown failed", "err", err)
	}
}
