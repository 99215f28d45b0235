package statemachine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "statemachine"

// startSetObjectSpan creates the span covering a subject binding.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startSetObjectSpan(ctx context.Context, m *StateMachine) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "statemachine.set_object")
	addMachineAttributes(span, m)

	return ctx, span
}

// startApplySpan creates the span covering a transition apply.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startApplySpan(ctx context.Context, m *StateMachine, t *Transition) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "statemachine.apply")
	addMachineAttributes(span, m)
	span.SetAttributes(
		attribute.String("transition", t.Name()),
		attribute.String("transition_kind", t.Kind().String()),
		attribute.String("from_state", m.currentName),
		attribute.String("to_state", t.To()),
	)

	return ctx, span
}

func addMachineAttributes(span trace.Span, m *StateMachine) {
	span.SetAttributes(
		attribute.String("machine_id", m.id),
		attribute.String("machine", sanitizeMachine(m.name)),
	)
}

// endSpan records the outcome of the operation and ends the span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "completed")
	}

	span.End()
}
