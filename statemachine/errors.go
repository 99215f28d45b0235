package statemachine

import (
	"errors"
	"fmt"
)

// Predefined error types.
var (
	// ErrUnknownTransition indicates that no transition is registered under the given name.
	ErrUnknownTransition = errors.New("unknown transition")
	// ErrIllegalTransition indicates that the transition is not possible from the current state.
	ErrIllegalTransition = errors.New("transition is not possible in current state")
	// ErrNoInitialState indicates that the graph has no state of type initial.
	ErrNoInitialState = errors.New("no initial state found")
	// ErrNotBound indicates that no subject was bound with SetObject.
	ErrNotBound = errors.New("no subject bound to state machine")
	// ErrStateNotFound indicates that a state name does not resolve to a state of the graph.
	ErrStateNotFound = errors.New("state not found")

	// ErrInvalidState indicates that a state definition is malformed.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidTransition indicates that a transition definition is malformed.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrUnknownStateType indicates that an unknown state type was encountered.
	ErrUnknownStateType = errors.New("unknown state type")

	// ErrUnsupportedSubject indicates that an accessor cannot handle the subject's type.
	ErrUnsupportedSubject = errors.New("unsupported subject type")
	// ErrInvalidStateValue indicates that the stored state marker is not a string.
	ErrInvalidStateValue = errors.New("invalid state value")

	// ErrTransitionFromRequired indicates that a transition needs at least one origin state.
	ErrTransitionFromRequired = errors.New("transition from state is required")
	// ErrTransitionToRequired indicates that a transition needs a destination state.
	ErrTransitionToRequired = errors.New("transition to state is required")
	// ErrUnknownGuard indicates that a configuration references an unregistered guard.
	ErrUnknownGuard = errors.New("unknown guard")
	// ErrUnknownSetter indicates that a configuration references an unregistered setter.
	ErrUnknownSetter = errors.New("unknown setter")
	// ErrUnknownListener indicates that a configuration references an unregistered listener.
	ErrUnknownListener = errors.New("unknown listener")
	// ErrUnknownCustomTransition indicates that a configuration references an unregistered custom transition.
	ErrUnknownCustomTransition = errors.New("unknown custom transition")
	// ErrInvalidConfig indicates that a configuration document cannot be decoded.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StateError wraps an error with state context.
type StateError struct {
	State string
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state %s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// TransitionError wraps an error with transition context.
type TransitionError struct {
	Transition string
	State      string
	Err        error
}

func (e *TransitionError) Error() string {
	if e.State == "" {
		return fmt.Sprintf("transition %s: %v", e.Transition, e.Err)
	}

	return fmt.Sprintf("transition %s from %s: %v", e.Transition, e.State, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// WrapStateError wraps an error with state context.
func WrapStateError(state string, err error) error {
	if err == nil {
		return nil
	}

	return &StateError{
		State: state,
		Err:   err,
	}
}

// WrapTransitionError wraps an error with transition context.
func WrapTransitionError(transition, state string, err error) error {
	if err == nil {
		return nil
	}

	return &TransitionError{
		Transition: transition,
		State:      state,
		Err:        err,
	}
}

// IsUnknownTransition reports whether err is, or wraps, ErrUnknownTransition.
func IsUnknownTransition(err error) bool {
	return errors.Is(err, ErrUnknownTransition)
}

// IsIllegalTransition reports whether err is, or wraps, ErrIllegalTransition.
func IsIllegalTransition(err error) bool {
	return errors.Is(err, ErrIllegalTransition)
}
