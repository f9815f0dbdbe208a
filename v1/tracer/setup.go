package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/Aleph-Alpha/embedtools/v1/logger"
)

// Tracer wraps the OpenTelemetry TracerProvider used by the tool-call
// client. Creating one installs it as the global provider, so spans opened
// by the toolcall package and the header propagation on outgoing requests
// both go through it.
//
// The Tracer is safe for concurrent use.
type Tracer struct {
	tracer *trace.TracerProvider
	logger logger.Logger
}

// NewClient creates the TracerProvider described by cfg and registers it,
// together with a W3C trace-context and baggage propagator, as the
// OpenTelemetry globals.
//
// Example:
//
//	t, err := tracer.NewClient(tracer.Config{ServiceName: "embedctl"}, log)
//	if err != nil {
//	    return err
//	}
//	defer t.Shutdown(context.Background())
func NewClient(cfg Config, log logger.Logger) (*Tracer, error) {
	if log == nil {
		log = logger.NewNop()
	}

	var options []trace.TracerProviderOption

	if cfg.EnableExport {
		var opts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		}
		exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(opts...))
		if err != nil {
			log.Error("cannot initiate tracer exporter", err, nil)
			return nil, fmt.Errorf("tracer: create exporter: %w", err)
		}
		options = append(options, trace.WithBatcher(exporter))
	}

	options = append(options, trace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := trace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator())

	log.Debug("tracer initialised", nil, map[string]interface{}{
		"service": cfg.ServiceName,
		"export":  cfg.EnableExport,
	})

	return &Tracer{tracer: tp, logger: log}, nil
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.tracer == nil {
		return nil
	}
	return t.tracer.Shutdown(ctx)
}

func propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}
