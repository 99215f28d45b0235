package statemachine

import (
	"context"
	"maps"
	"slices"
)

// TransitionKind tags how the engine drives a transition.
type TransitionKind int

const (
	// KindGeneric transitions carry properties, a setter, guards and listeners;
	// the engine evaluates legality and runs the apply sequence.
	KindGeneric TransitionKind = iota
	// KindCustom transitions carry their own legality and/or apply functions,
	// which fully replace the engine's behavior.
	KindCustom
)

func (k TransitionKind) String() string {
	if k == KindCustom {
		return "custom"
	}

	return "generic"
}

// Transition is a named edge from one or more origin states to a single destination.
type Transition struct {
	name       string
	from       []string
	to         string
	kind       TransitionKind
	properties Properties
	setter     Setter
	guards     []Guard
	listeners  []Listener
	canFn      CanFunc
	applyFn    ApplyFunc
}

// TransitionOption configures a generic transition.
type TransitionOption func(*Transition)

// WithProperties sets the static properties merged onto the subject on success.
// The map is copied.
func WithProperties(properties Properties) TransitionOption {
	return func(t *Transition) {
		t.properties = maps.Clone(properties)
	}
}

// WithSetter sets the mutator invoked after the state and properties were written.
func WithSetter(setter Setter) TransitionOption {
	return func(t *Transition) {
		t.setter = setter
	}
}

// WithGuards appends guards. Nil guards are skipped.
func WithGuards(guards ...Guard) TransitionOption {
	return func(t *Transition) {
		for _, guard := range guards {
			t.AddGuard(guard)
		}
	}
}

// WithListeners appends listeners. Nil listeners are skipped.
func WithListeners(listeners ...Listener) TransitionOption {
	return func(t *Transition) {
		for _, listener := range listeners {
			t.AddListener(listener)
		}
	}
}

// NewTransition creates a generic transition.
func NewTransition(name string, from []string, to string, opts ...TransitionOption) *Transition {
	t := &Transition{
		name: name,
		from: slices.Clone(from),
		to:   to,
		kind: KindGeneric,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// NewCustomTransition creates a transition whose legality and/or apply logic is
// supplied by the caller. A nil can falls back to the engine's guard and graph
// checks; a nil apply falls back to the generic apply sequence.
func NewCustomTransition(name string, from []string, to string, can CanFunc, apply ApplyFunc) *Transition {
	return &Transition{
		name:    name,
		from:    slices.Clone(from),
		to:      to,
		kind:    KindCustom,
		canFn:   can,
		applyFn: apply,
	}
}

func (t *Transition) Name() string {
	return t.name
}

func (t *Transition) Kind() TransitionKind {
	return t.kind
}

// From returns the origin state names in insertion order.
func (t *Transition) From() []string {
	return slices.Clone(t.from)
}

// AddFrom appends an origin state name. Use it before the transition is registered:
// the machine links origins to the transition at registration time.
func (t *Transition) AddFrom(state string) *Transition {
	t.from = append(t.from, state)

	return t
}

func (t *Transition) To() string {
	return t.to
}

// SetTo replaces the destination state name.
func (t *Transition) SetTo(state string) *Transition {
	t.to = state

	return t
}

// Properties returns a copy of the static properties.
func (t *Transition) Properties() Properties {
	return maps.Clone(t.properties)
}

func (t *Transition) SetProperties(properties Properties) *Transition {
	t.properties = maps.Clone(properties)

	return t
}

func (t *Transition) HasProperties() bool {
	return len(t.properties) > 0
}

func (t *Transition) Setter() Setter {
	return t.setter
}

func (t *Transition) SetSetter(setter Setter) *Transition {
	t.setter = setter

	return t
}

func (t *Transition) HasSetter() bool {
	return t.setter != nil
}

func (t *Transition) Guards() []Guard {
	return slices.Clone(t.guards)
}

func (t *Transition) AddGuard(guard Guard) *Transition {
	if guard != nil {
		t.guards = append(t.guards, guard)
	}

	return t
}

func (t *Transition) HasGuards() bool {
	return len(t.guards) > 0
}

func (t *Transition) Listeners() []Listener {
	return slices.Clone(t.listeners)
}

func (t *Transition) AddListener(listener Listener) *Transition {
	if listener != nil {
		t.listeners = append(t.listeners, listener)
	}

	return t
}

func (t *Transition) HasListeners() bool {
	return len(t.listeners) > 0
}

// HasCan reports whether the transition supplies its own legality check.
func (t *Transition) HasCan() bool {
	return t.kind == KindCustom && t.canFn != nil
}

// HasApply reports whether the transition supplies its own apply routine.
func (t *Transition) HasApply() bool {
	return t.kind == KindCustom && t.applyFn != nil
}

// Can runs the custom legality check. It returns false for transitions without one.
func (t *Transition) Can(ctx context.Context, subject any) (bool, error) {
	if !t.HasCan() {
		return false, nil
	}

	return t.canFn(ctx, subject)
}

// Apply runs the custom apply routine. It is a no-op for transitions without one.
func (t *Transition) Apply(ctx context.Context, accessor Accessor, subject any, payload Properties) error {
	if !t.HasApply() {
		return nil
	}

	return t.applyFn(ctx, accessor, subject, payload)
}

// DispatchEvent calls every listener in insertion order with the same event.
// The first listener error stops the dispatch and is returned unchanged.
func (t *Transition) DispatchEvent(ctx context.Context, event TransitionEvent) error {
	for _, listener := range t.listeners {
		if err := listener(ctx, event); err != nil {
			return err
		}
	}

	return nil
}
