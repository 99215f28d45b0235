// Package testing provides testing utilities for state machine workflows.
//
//nolint:varnamelen // short names idiomatic
package testing

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/amp-labs/amp-finite/statemachine"
	"github.com/stretchr/testify/require"
)

// TestMachine wraps StateMachine with testing utilities.
type TestMachine struct {
	*statemachine.StateMachine

	t          *testing.T
	trace      []TraceEntry
	assertions []Assertion
}

// TraceEntry records a single Apply call.
type TraceEntry struct {
	Timestamp  time.Time
	Transition string
	From       string
	To         string
	Payload    statemachine.Properties
	Duration   time.Duration
	Error      error
}

// Assertion represents a test assertion.
type Assertion struct {
	Name   string
	Passed bool
	Error  error
}

// NewTestMachine creates a machine over Fields subjects from config and binds subject.
func NewTestMachine(
	t *testing.T, config *statemachine.Config, subject any, opts ...statemachine.Option,
) *TestMachine {
	t.Helper()

	return NewTestMachineWithAccessor(t, config, statemachine.NewFieldsAccessor(), subject, opts...)
}

// NewTestMachineWithAccessor creates a machine with a custom accessor and binds subject.
func NewTestMachineWithAccessor(
	t *testing.T,
	config *statemachine.Config,
	accessor statemachine.Accessor,
	subject any,
	opts ...statemachine.Option,
) *TestMachine {
	t.Helper()

	machine, err := statemachine.NewFromConfig(t.Context(), accessor, config, opts...)
	require.NoError(t, err, "failed to create machine")
	require.NoError(t, machine.SetObject(t.Context(), subject), "failed to bind subject")

	return &TestMachine{
		StateMachine: machine,
		t:            t,
		trace:        make([]TraceEntry, 0),
		assertions:   make([]Assertion, 0),
	}
}

// Apply applies a transition and records it in the trace.
func (tm *TestMachine) Apply(ctx context.Context, name string, payload statemachine.Properties) error {
	tm.t.Helper()

	entry := TraceEntry{
		Timestamp:  time.Now(),
		Transition: name,
		From:       tm.CurrentStateName(),
		Payload:    payload,
	}

	err := tm.StateMachine.Apply(ctx, name, payload)

	entry.Duration = time.Since(entry.Timestamp)
	entry.To = tm.CurrentStateName()
	entry.Error = err
	tm.trace = append(tm.trace, entry)

	return err
}

// MustApply applies a sequence of transitions, failing the test on the first error.
func (tm *TestMachine) MustApply(ctx context.Context, names ...string) {
	tm.t.Helper()

	for _, name := range names {
		require.NoError(tm.t, tm.Apply(ctx, name, nil), "transition '%s' should apply", name)
	}
}

func (tm *TestMachine) record(assertion Assertion) {
	tm.assertions = append(tm.assertions, assertion)
}

// AssertState checks the cached current state.
func (tm *TestMachine) AssertState(expected string) {
	tm.t.Helper()

	actual := tm.CurrentStateName()
	assertion := Assertion{
		Name:   fmt.Sprintf("Current state is '%s'", expected),
		Passed: actual == expected,
	}

	if !assertion.Passed {
		assertion.Error = fmt.Errorf("%w: expected '%s', got '%s'", ErrUnexpectedState, expected, actual)
	}

	tm.record(assertion)
	require.Equal(tm.t, expected, actual, "current state should be '%s'", expected)
}

// AssertCan checks that a transition is currently allowed.
func (tm *TestMachine) AssertCan(name string) {
	tm.t.Helper()

	allowed, err := tm.Can(tm.t.Context(), name)
	require.NoError(tm.t, err)

	assertion := Assertion{
		Name:   fmt.Sprintf("Transition '%s' is allowed", name),
		Passed: allowed,
	}

	if !allowed {
		assertion.Error = fmt.Errorf("%w: '%s' from '%s'", ErrTransitionNotAllowed, name, tm.CurrentStateName())
	}

	tm.record(assertion)
	require.True(tm.t, allowed, "transition '%s' should be allowed from '%s'", name, tm.CurrentStateName())
}

// AssertCannot checks that a transition is currently refused.
func (tm *TestMachine) AssertCannot(name string) {
	tm.t.Helper()

	allowed, err := tm.Can(tm.t.Context(), name)
	require.NoError(tm.t, err)

	assertion := Assertion{
		Name:   fmt.Sprintf("Transition '%s' is refused", name),
		Passed: !allowed,
	}

	if allowed {
		assertion.Error = fmt.Errorf("%w: '%s' from '%s'", ErrTransitionAllowed, name, tm.CurrentStateName())
	}

	tm.record(assertion)
	require.False(tm.t, allowed, "transition '%s' should be refused from '%s'", name, tm.CurrentStateName())
}

// AssertStateVisited checks that a state was entered or left by a recorded transition.
func (tm *TestMachine) AssertStateVisited(name string) {
	tm.t.Helper()

	visited := tm.visited(name)
	assertion := Assertion{
		Name:   fmt.Sprintf("State '%s' was visited", name),
		Passed: visited,
	}

	if !visited {
		assertion.Error = fmt.Errorf("%w: '%s'", ErrStateNotVisited, name)
	}

	tm.record(assertion)
	require.True(tm.t, visited, "state '%s' should have been visited", name)
}

// AssertTransitionTaken checks that a transition was applied successfully.
func (tm *TestMachine) AssertTransitionTaken(name string) {
	tm.t.Helper()

	taken := tm.taken(name)
	assertion := Assertion{
		Name:   fmt.Sprintf("Transition '%s' was taken", name),
		Passed: taken,
	}

	if !taken {
		assertion.Error = fmt.Errorf("%w: '%s'", ErrTransitionNotTaken, name)
	}

	tm.record(assertion)
	require.True(tm.t, taken, "transition '%s' should have been taken", name)
}

// AssertPath checks the sequence of states entered by successful transitions.
func (tm *TestMachine) AssertPath(expected ...string) {
	tm.t.Helper()

	actual := tm.Path()
	assertion := Assertion{
		Name:   fmt.Sprintf("Path is %v", expected),
		Passed: slices.Equal(expected, actual),
	}

	if !assertion.Passed {
		assertion.Error = fmt.Errorf("%w: expected %v, got %v", ErrUnexpectedPath, expected, actual)
	}

	tm.record(assertion)
	require.Equal(tm.t, expected, actual, "path should be %v", expected)
}

// Path returns the state the subject was bound in followed by every state entered
// through a successful transition.
func (tm *TestMachine) Path() []string {
	var path []string

	for _, entry := range tm.trace {
		if entry.Error != nil {
			continue
		}

		if len(path) == 0 {
			path = append(path, entry.From)
		}

		path = append(path, entry.To)
	}

	return path
}

func (tm *TestMachine) visited(name string) bool {
	for _, entry := range tm.trace {
		if entry.Error == nil && (entry.From == name || entry.To == name) {
			return true
		}
	}

	return false
}

func (tm *TestMachine) taken(name string) bool {
	for _, entry := range tm.trace {
		if entry.Transition == name && entry.Error == nil {
			return true
		}
	}

	return false
}

// GetTrace returns the apply trace for inspection.
func (tm *TestMachine) GetTrace() []TraceEntry {
	return tm.trace
}

// GetAssertions returns all assertions made.
func (tm *TestMachine) GetAssertions() []Assertion {
	return tm.assertions
}
