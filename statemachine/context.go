package statemachine

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// stateMachineContextKey is the key used to store the running machine in Go context.
const stateMachineContextKey contextKey = "statemachine_machine"

// withMachine attaches the machine to ctx so guards, setters, listeners and logging
// hooks can find out which machine is calling them.
func (m *StateMachine) withMachine(ctx context.Context) context.Context {
	if existing, ok := ctx.Value(stateMachineContextKey).(*StateMachine); ok && existing == m {
		return ctx
	}

	return context.WithValue(ctx, stateMachineContextKey, m)
}

// MachineFromContext returns the machine driving the current callback, if any.
func MachineFromContext(ctx context.Context) (*StateMachine, bool) {
	machine, ok := ctx.Value(stateMachineContextKey).(*StateMachine)
	if !ok || machine == nil {
		return nil, false
	}

	return machine, true
}
