package statemachine

import (
	"context"
	"log/slog"
	"time"
)

// Logger provides logging hooks for state machine operations.
type Logger interface {
	ObjectBound(ctx context.Context, state string, initialized bool)
	TransitionApplied(ctx context.Context, transition, from, to string, duration time.Duration)
	TransitionRejected(ctx context.Context, transition, state string, err error)
	TransitionFailed(ctx context.Context, transition, from string, duration time.Duration, err error)
}

// ObservabilityLabels contains contextual labels for observability.
type ObservabilityLabels struct {
	MachineID    string
	MachineName  string
	CurrentState string
}

// GetObservabilityLabels extracts observability labels from the context.
// Returns an empty ObservabilityLabels struct if the context carries no machine.
func GetObservabilityLabels(ctx context.Context) ObservabilityLabels {
	machine, ok := MachineFromContext(ctx)
	if !ok {
		return ObservabilityLabels{}
	}

	return ObservabilityLabels{
		MachineID:    machine.id,
		MachineName:  machine.name,
		CurrentState: machine.currentName,
	}
}

// DefaultLogger implements Logger using slog.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a new default logger. A nil logger means slog.Default().
func NewDefaultLogger(logger *slog.Logger) *DefaultLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultLogger{
		logger: logger,
	}
}

func (l *DefaultLogger) fields(ctx context.Context, fields ...any) []any {
	labels := GetObservabilityLabels(ctx)
	if labels.MachineID == "" {
		return fields
	}

	return append(fields,
		"machine_id", labels.MachineID,
		"machine", labels.MachineName,
	)
}

func (l *DefaultLogger) ObjectBound(ctx context.Context, state string, initialized bool) {
	l.logger.DebugContext(ctx, "Subject bound", l.fields(ctx,
		"state", state,
		"initialized", initialized,
	)...)
}

func (l *DefaultLogger) TransitionApplied(ctx context.Context, transition, from, to string, duration time.Duration) {
	l.logger.InfoContext(ctx, "Transition applied", l.fields(ctx,
		"transition", transition,
		"from", from,
		"to", to,
		"duration_ms", duration.Milliseconds(),
	)...)
}

func (l *DefaultLogger) TransitionRejected(ctx context.Context, transition, state string, err error) {
	l.logger.WarnContext(ctx, "Transition rejected", l.fields(ctx,
		"transition", transition,
		"state", state,
		"error", err,
	)...)
}

func (l *DefaultLogger) TransitionFailed(
	ctx context.Context, transition, from string, duration time.Duration, err error,
) {
	l.logger.ErrorContext(ctx, "Transition failed", l.fields(ctx,
		"transition", transition,
		"from", from,
		"duration_ms", duration.Milliseconds(),
		"error", err,
	)...)
}
