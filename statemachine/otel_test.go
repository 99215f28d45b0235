package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer creates a test tracer with an in-memory exporter.
func setupTestTracer(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
	)

	oldProvider := otel.GetTracerProvider()

	otel.SetTracerProvider(tp)

	cleanup := func() {
		otel.SetTracerProvider(oldProvider)
	}

	return exporter, cleanup
}

func spanAttributes(span tracetest.SpanStub) map[string]any {
	attrMap := make(map[string]any)
	for _, attr := range span.Attributes {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	return attrMap
}

// machineSpans keeps the spans emitted by one machine.
func machineSpans(exporter *tracetest.InMemoryExporter, machine *StateMachine) tracetest.SpanStubs {
	var spans tracetest.SpanStubs

	for _, span := range exporter.GetSpans() {
		if spanAttributes(span)["machine_id"] == machine.ID() {
			spans = append(spans, span)
		}
	}

	return spans
}

// TestSpanCreation verifies spans for binding and applying.
// Note: Cannot use t.Parallel() because setupTestTracer modifies global OTEL tracer provider.
//
//nolint:paralleltest // Test modifies global OTEL tracer provider
func TestSpanCreation(t *testing.T) {
	exporter, cleanup := setupTestTracer(t)
	t.Cleanup(cleanup)

	ctx := t.Context()
	machine := newDocumentMachine(t, WithName("traced"))

	require.NoError(t, machine.SetObject(ctx, Fields{}))
	require.NoError(t, machine.Apply(ctx, "propose", nil))

	spans := machineSpans(exporter, machine)
	require.Len(t, spans, 2)

	bindSpan := spans[0]
	assert.Equal(t, "statemachine.set_object", bindSpan.Name)
	assert.Equal(t, codes.Ok, bindSpan.Status.Code)
	assert.Equal(t, "traced", spanAttributes(bindSpan)["machine"])

	applySpan := spans[1]
	assert.Equal(t, "statemachine.apply", applySpan.Name)
	assert.Equal(t, codes.Ok, applySpan.Status.Code)

	attrs := spanAttributes(applySpan)
	assert.Equal(t, "propose", attrs["transition"])
	assert.Equal(t, "generic", attrs["transition_kind"])
	assert.Equal(t, "draft", attrs["from_state"])
	assert.Equal(t, "proposed", attrs["to_state"])
}

// TestSpanRecordsErrors verifies a failing apply marks its span.
//
//nolint:paralleltest // Test modifies global OTEL tracer provider
func TestSpanRecordsErrors(t *testing.T) {
	exporter, cleanup := setupTestTracer(t)
	t.Cleanup(cleanup)

	ctx := t.Context()
	machine := newDocumentMachine(t)
	require.NoError(t, machine.DefineTransition("fail", []string{"draft"}, "proposed",
		WithListeners(func(_ context.Context, event TransitionEvent) error {
			if event.IsPost() {
				return errBoom
			}

			return nil
		})))

	require.NoError(t, machine.SetObject(ctx, Fields{}))
	require.ErrorIs(t, machine.Apply(ctx, "fail", nil), errBoom)

	spans := machineSpans(exporter, machine)
	require.Len(t, spans, 2)

	applySpan := spans[1]
	assert.Equal(t, codes.Error, applySpan.Status.Code)
	assert.Equal(t, errBoom.Error(), applySpan.Status.Description)
	require.NotEmpty(t, applySpan.Events)
	assert.Equal(t, "exception", applySpan.Events[0].Name)
}

// TestRejectedApplyHasNoSpan verifies legality failures end before a span starts.
//
//nolint:paralleltest // Test modifies global OTEL tracer provider
func TestRejectedApplyHasNoSpan(t *testing.T) {
	exporter, cleanup := setupTestTracer(t)
	t.Cleanup(cleanup)

	ctx := t.Context()
	machine := newDocumentMachine(t)
	require.NoError(t, machine.SetObject(ctx, Fields{}))
	require.ErrorIs(t, machine.Apply(ctx, "accept", nil), ErrIllegalTransition)

	spans := machineSpans(exporter, machine)
	require.Len(t, spans, 1)
	assert.Equal(t, "statemachine.set_object", spans[0].Name)
}
