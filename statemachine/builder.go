package statemachine

import "context"

// Builder provides a fluent API for declaring a graph in code.
type Builder struct {
	config Config
}

// NewBuilder creates a new builder. The name becomes the machine name.
func NewBuilder(name string) *Builder {
	return &Builder{
		config: Config{
			Name:        name,
			States:      []StateConfig{},
			Transitions: []TransitionConfig{},
		},
	}
}

// State declares a state.
func (b *Builder) State(name string, stateType StateType, properties Properties) *Builder {
	b.config.States = append(b.config.States, StateConfig{
		Name:       name,
		Type:       stateType,
		Properties: properties,
	})

	return b
}

// Initial declares the initial state.
func (b *Builder) Initial(name string) *Builder {
	return b.State(name, StateTypeInitial, nil)
}

// Final declares final states.
func (b *Builder) Final(names ...string) *Builder {
	for _, name := range names {
		b.State(name, StateTypeFinal, nil)
	}

	return b
}

// Transition declares a generic transition.
func (b *Builder) Transition(name string, from []string, to string, opts ...TransitionOption) *Builder {
	b.config.Transitions = append(b.config.Transitions, TransitionConfig{
		Transition: NewTransition(name, from, to, opts...),
	})

	return b
}

// Custom declares a pre-built transition, typically one from NewCustomTransition.
func (b *Builder) Custom(transition *Transition) *Builder {
	b.config.Transitions = append(b.config.Transitions, TransitionConfig{
		Transition: transition,
	})

	return b
}

// Config returns the declarations collected so far.
func (b *Builder) Config() Config {
	return b.config
}

// Build constructs the state machine.
func (b *Builder) Build(ctx context.Context, accessor Accessor, opts ...Option) (*StateMachine, error) {
	config := b.config

	return NewFromConfig(ctx, accessor, &config, opts...)
}
