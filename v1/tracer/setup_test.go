package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/embedtools/v1/logger"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return &Tracer{tracer: tp, logger: logger.NewNop()}, rec
}

func TestNewClientInstallsGlobals(t *testing.T) {
	tr, err := NewClient(Config{ServiceName: "embedctl", AppEnv: "test"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })

	assert.Same(t, tr.tracer, otel.GetTracerProvider())
	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
}

func TestSpanHelpers(t *testing.T) {
	tr, rec := newRecordingTracer(t)

	_, span := tr.StartSpan(context.Background(), "embed-documents")
	tr.SetAttributes(span, map[string]interface{}{
		"tool":      "embeddings_generate",
		"documents": 3,
		"normalize": true,
		"score":     0.5,
		"tags":      []string{"a"},
	})
	tr.RecordErrorOnSpan(span, errors.New("tool failed"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "embed-documents", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "tool failed", got.Status().Description)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "embeddings_generate", attrs["tool"].AsString())
	assert.Equal(t, int64(3), attrs["documents"].AsInt64())
	assert.True(t, attrs["normalize"].AsBool())
	assert.Equal(t, 0.5, attrs["score"].AsFloat64())
	assert.Equal(t, "[a]", attrs["tags"].AsString())
	require.Len(t, got.Events(), 1)
}

func TestCarrierRoundTrip(t *testing.T) {
	tr, _ := newRecordingTracer(t)

	ctx, span := tr.StartSpan(context.Background(), "outbound")
	defer span.End()

	carrier := tr.GetCarrier(ctx)
	require.Contains(t, carrier, "traceparent")

	remote := tr.SetCarrierOnContext(context.Background(), carrier)
	_, child := tr.StartSpan(remote, "inbound")
	defer child.End()

	assert.Equal(t, span.SpanContext().TraceID(), child.SpanContext().TraceID())
}

func TestShutdownNil(t *testing.T) {
	var tr *Tracer
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestFXModule(t *testing.T) {
	var tr *Tracer
	app := fxtest.New(t,
		fx.Supply(Config{ServiceName: "embedctl"}),
		FXModule,
		fx.Populate(&tr),
	)
	app.RequireStart()
	require.NotNil(t, tr)
	app.RequireStop()
}
