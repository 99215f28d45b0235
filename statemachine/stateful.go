package statemachine

import (
	"context"
	"fmt"
	"maps"
)

// Stateful is implemented by subjects that manage their own state marker.
type Stateful interface {
	State() (string, bool)
	SetState(state string) error
	ApplyProperties(properties Properties) error
}

// StatefulAccessor integrates subjects implementing Stateful.
type StatefulAccessor struct{}

// NewStatefulAccessor creates an accessor for Stateful subjects.
func NewStatefulAccessor() *StatefulAccessor {
	return &StatefulAccessor{}
}

func (a *StatefulAccessor) GetState(_ context.Context, subject any) (string, bool, error) {
	stateful, err := asStateful(subject)
	if err != nil {
		return "", false, err
	}

	state, ok := stateful.State()
	if state == "" {
		ok = false
	}

	return state, ok, nil
}

func (a *StatefulAccessor) SetState(_ context.Context, subject any, state string) error {
	stateful, err := asStateful(subject)
	if err != nil {
		return err
	}

	return stateful.SetState(state)
}

func (a *StatefulAccessor) ApplyProperties(_ context.Context, subject any, properties Properties) error {
	if len(properties) == 0 {
		return nil
	}

	stateful, err := asStateful(subject)
	if err != nil {
		return err
	}

	return stateful.ApplyProperties(properties)
}

func (a *StatefulAccessor) CallGuards(ctx context.Context, subject any, guards []Guard) (bool, error) {
	return EvaluateGuards(ctx, subject, guards)
}

func asStateful(subject any) (Stateful, error) {
	stateful, ok := subject.(Stateful)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not implement Stateful", ErrUnsupportedSubject, subject)
	}

	return stateful, nil
}

// NewStatefulMachine creates a machine wired to a StatefulAccessor.
func NewStatefulMachine(opts ...Option) *StateMachine {
	return New(NewStatefulAccessor(), opts...)
}

// Record is an embeddable Stateful implementation keeping the state marker and an
// attribute bag. Properties applied by the engine land in Attributes. The embedded
// Binding lets the record drive its own machine once bound.
type Record struct {
	Binding

	StateName  string
	Attributes map[string]any
}

func (r *Record) State() (string, bool) {
	return r.StateName, r.StateName != ""
}

func (r *Record) SetState(state string) error {
	r.StateName = state

	return nil
}

func (r *Record) ApplyProperties(properties Properties) error {
	if r.Attributes == nil {
		r.Attributes = make(map[string]any, len(properties))
	}

	maps.Copy(r.Attributes, properties)

	return nil
}

// Attribute returns a single attribute.
func (r *Record) Attribute(key string) (any, bool) {
	val, ok := r.Attributes[key]

	return val, ok
}

// Binding gives a subject direct access to the machine it is bound to. Embed it in
// the subject type and call Bind with the subject itself. The machine should not be
// rebound to another subject afterwards.
type Binding struct {
	machine *StateMachine
}

// Bind binds subject to machine and remembers the machine. A failed bind keeps
// any earlier machine.
func (b *Binding) Bind(ctx context.Context, machine *StateMachine, subject any) error {
	if machine == nil {
		return fmt.Errorf("%w: nil machine", ErrNotBound)
	}

	if err := machine.SetObject(ctx, subject); err != nil {
		return err
	}

	b.machine = machine

	return nil
}

// Machine returns the bound machine, or nil.
func (b *Binding) Machine() *StateMachine {
	return b.machine
}

// CanTransition reports whether the named transition is currently allowed.
func (b *Binding) CanTransition(ctx context.Context, name string) (bool, error) {
	if b.machine == nil {
		return false, ErrNotBound
	}

	return b.machine.Can(ctx, name)
}

// ApplyTransition applies the named transition through the bound machine.
func (b *Binding) ApplyTransition(ctx context.Context, name string, payload Properties) error {
	if b.machine == nil {
		return ErrNotBound
	}

	return b.machine.Apply(ctx, name, payload)
}
