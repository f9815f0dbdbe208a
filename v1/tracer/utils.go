package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	traceSpan "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Aleph-Alpha/embedtools"

// RecordErrorOnSpan records err on span and marks the span as failed.
func (t *Tracer) RecordErrorOnSpan(span traceSpan.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// StartSpan opens a span named name as a child of any span in ctx.
// The caller must end the returned span. A nil *Tracer uses the global
// provider, which records nothing until a Tracer is created.
//
// Example:
//
//	ctx, span := t.StartSpan(ctx, "toolcall.call", trace.WithSpanKind(trace.SpanKindClient))
//	defer span.End()
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...traceSpan.SpanStartOption) (context.Context, traceSpan.Span) {
	var provider traceSpan.TracerProvider = otel.GetTracerProvider()
	if t != nil && t.tracer != nil {
		provider = t.tracer
	}
	return provider.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// SetAttributes adds attrs to span. Strings, ints, floats and bools keep
// their type; anything else is formatted with fmt.Sprint.
func (t *Tracer) SetAttributes(span traceSpan.Span, attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}

	attributes := make([]attribute.KeyValue, 0, len(attrs))

	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			attributes = append(attributes, attribute.String(k, val))
		case int:
			attributes = append(attributes, attribute.Int(k, val))
		case int64:
			attributes = append(attributes, attribute.Int64(k, val))
		case float64:
			attributes = append(attributes, attribute.Float64(k, val))
		case bool:
			attributes = append(attributes, attribute.Bool(k, val))
		default:
			attributes = append(attributes, attribute.String(k, fmt.Sprint(val)))
		}
	}

	span.SetAttributes(attributes...)
}

// GetCarrier returns the W3C trace headers ("traceparent", "tracestate",
// "baggage") for the span in ctx. The toolcall client copies them onto every
// outgoing request.
func (t *Tracer) GetCarrier(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	propagator().Inject(ctx, carrier)
	return carrier
}

// SetCarrierOnContext is the inverse of GetCarrier: it returns ctx with the
// remote span context found in carrier. embedctl uses it to continue a trace
// handed over in the TRACEPARENT environment variable.
func (t *Tracer) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	return propagator().Extract(ctx, propagation.MapCarrier(carrier))
}
