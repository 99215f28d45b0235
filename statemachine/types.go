package statemachine

import (
	"context"
	"fmt"
)

// StateType classifies a state within the graph.
type StateType string

const (
	// StateTypeInitial marks the entry point of the graph. A machine is expected to
	// have exactly one; the first one in declaration order wins.
	StateTypeInitial StateType = "initial"
	// StateTypeNormal is the default type.
	StateTypeNormal StateType = "normal"
	// StateTypeFinal marks a state with no further legal transitions by convention.
	StateTypeFinal StateType = "final"
)

// ParseStateType converts a configuration value into a StateType.
// The empty string maps to StateTypeNormal.
func ParseStateType(value string) (StateType, error) {
	switch StateType(value) {
	case "", StateTypeNormal:
		return StateTypeNormal, nil
	case StateTypeInitial:
		return StateTypeInitial, nil
	case StateTypeFinal:
		return StateTypeFinal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStateType, value)
	}
}

// Properties is an opaque key/value bag merged onto a subject.
type Properties map[string]any

// Guard gates the legality of a transition. Returning false (or an error) fails the check.
type Guard func(ctx context.Context, subject any) (bool, error)

// Setter mutates the subject once, after properties were merged, during a generic apply.
type Setter func(ctx context.Context, subject any) error

// Listener observes the pre and post phases of a transition.
type Listener func(ctx context.Context, event TransitionEvent) error

// CanFunc replaces the engine's legality check for a custom transition.
type CanFunc func(ctx context.Context, subject any) (bool, error)

// ApplyFunc replaces the engine's apply sequence for a custom transition. It is
// responsible for every mutation of the subject, including writing the new state.
type ApplyFunc func(ctx context.Context, accessor Accessor, subject any, payload Properties) error
