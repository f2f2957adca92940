package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/orderentry/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrValue(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestStartSpan(t *testing.T) {
	t.Run("default kind is internal", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "orderentry.select_product")
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "orderentry.select_product", spans[0].Name())
		assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	})

	t.Run("applies attributes and kind", func(t *testing.T) {
		sr := setupTestTracer(t)
		lineID := uuid.New()

		_, span := telemetry.StartSpan(context.Background(), "lookup.stock",
			telemetry.WithAttribute(telemetry.SpanAttrLineID, lineID),
			telemetry.WithAttribute(telemetry.SpanAttrCacheHit, true),
			telemetry.WithSpanKind(trace.SpanKindClient),
		)
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
		v, ok := attrValue(spans[0], telemetry.SpanAttrLineID)
		require.True(t, ok)
		assert.Equal(t, lineID.String(), v)
		v, ok = attrValue(spans[0], telemetry.SpanAttrCacheHit)
		require.True(t, ok)
		assert.Equal(t, "true", v)
	})

	t.Run("service span name", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartServiceSpan(context.Background(), "OrderEntryService", "Commit")
		span.End()

		require.Len(t, sr.Ended(), 1)
		assert.Equal(t, "OrderEntryService.Commit", sr.Ended()[0].Name())
	})
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "attrs")
	telemetry.SetAttributes(span, "count", 3, "ratio", 0.5, 42, "ignored", "dangling")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	v, ok := attrValue(spans[0], "count")
	require.True(t, ok)
	assert.Equal(t, "3", v)
	_, ok = attrValue(spans[0], "dangling")
	assert.False(t, ok)

	assert.NotPanics(t, func() { telemetry.SetAttributes(nil, "k", "v") })
}

func TestRecordError(t *testing.T) {
	t.Run("marks span as error", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "failing")
		telemetry.RecordError(span, errors.New("catalog unavailable"))
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "catalog unavailable", spans[0].Status().Description)
		require.Len(t, spans[0].Events(), 1)
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "ok")
		telemetry.RecordError(span, nil)
		span.End()

		assert.Equal(t, codes.Unset, sr.Ended()[0].Status().Code)
	})
}

func TestAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "events")
	telemetry.AddEvent(span, "lookup_superseded", "line_id", "abc")
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "lookup_superseded", events[0].Name)
}

func TestGetTraceID(t *testing.T) {
	t.Run("empty without span", func(t *testing.T) {
		assert.Equal(t, "", telemetry.GetTraceID(context.Background()))
	})

	t.Run("returns span trace id", func(t *testing.T) {
		setupTestTracer(t)

		ctx, span := telemetry.StartSpan(context.Background(), "traced")
		defer span.End()

		traceID := telemetry.GetTraceID(ctx)
		assert.Len(t, traceID, 32)
		assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
	})
}
