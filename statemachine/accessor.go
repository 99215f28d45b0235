package statemachine

import "context"

// Accessor is the only point of contact between the engine and a subject.
// Implementations are stateless strategies and may be shared between machines.
type Accessor interface {
	// GetState reads the stored state marker. ok=false means the subject was never initialized.
	GetState(ctx context.Context, subject any) (state string, ok bool, err error)

	// SetState writes the state marker. A subsequent GetState on the same subject must see it.
	SetState(ctx context.Context, subject any, state string) error

	// ApplyProperties merges properties onto the subject, overwriting keys of the same
	// name. An empty bag is a no-op.
	ApplyProperties(ctx context.Context, subject any, properties Properties) error

	// CallGuards returns the logical AND of every guard. Evaluation stops at the first
	// false result or error; remaining guards are not called.
	CallGuards(ctx context.Context, subject any, guards []Guard) (bool, error)
}

// EvaluateGuards runs guards in order with short-circuit AND semantics.
// Accessors use it to implement CallGuards.
func EvaluateGuards(ctx context.Context, subject any, guards []Guard) (bool, error) {
	for _, guard := range guards {
		ok, err := guard(ctx, subject)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}
