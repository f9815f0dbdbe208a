package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		Debug:     zap.DebugLevel,
		Info:      zap.InfoLevel,
		Warning:   zap.WarnLevel,
		Error:     zap.ErrorLevel,
		"":        zap.InfoLevel,
		"verbose": zap.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestWithContextAddsTraceFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core), true)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("logger-test").Start(context.Background(), "op")
	defer span.End()

	l.InfoWithContext(ctx, "tool call finished", nil, map[string]interface{}{"tool": "embeddings_generate"})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	assert.Equal(t, "embeddings_generate", fields["tool"])
}

func TestWithContextWithoutTracing(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core), false)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("logger-test").Start(context.Background(), "op")
	defer span.End()

	l.WarnWithContext(ctx, "poll failed", errors.New("connection reset"), nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotContains(t, fields, "trace_id")
	assert.Equal(t, "connection reset", fields["error"])
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewFromZap(zap.New(core), false)

	l.Debug("hidden", nil, nil)
	l.Info("shown", nil, nil)
	l.Error("also shown", errors.New("x"), nil)

	assert.Equal(t, 2, logs.Len())
}

func TestNewLoggerClientBuilds(t *testing.T) {
	l := NewLoggerClient(Config{Level: Debug, ServiceName: "test", Encoding: "console"})
	require.NotNil(t, l.Zap)
	assert.True(t, l.Zap.Core().Enabled(zap.DebugLevel))

	var _ Logger = l
	var _ Logger = NewNop()
}
