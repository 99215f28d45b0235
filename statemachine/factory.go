package statemachine

import (
	"context"
	"fmt"
)

// Built-in callable names known to every Registry.
const (
	GuardAlways = "always"
	GuardNever  = "never"
)

// CustomTransitionBuilder creates a custom transition for a config entry. The params
// come from the entry's parameters mapping.
type CustomTransitionBuilder func(name string, from []string, to string, params map[string]any) (*Transition, error)

// Registry binds the callable names used in configuration files to functions.
// Applications register their guards, setters, listeners and custom transitions
// before resolving a ConfigFile.
type Registry struct {
	guards    map[string]Guard
	setters   map[string]Setter
	listeners map[string]Listener
	customs   map[string]CustomTransitionBuilder
}

// NewRegistry creates a registry with the built-in guards.
func NewRegistry() *Registry {
	registry := &Registry{
		guards:    make(map[string]Guard),
		setters:   make(map[string]Setter),
		listeners: make(map[string]Listener),
		customs:   make(map[string]CustomTransitionBuilder),
	}

	registry.RegisterGuard(GuardAlways, func(context.Context, any) (bool, error) { return true, nil })
	registry.RegisterGuard(GuardNever, func(context.Context, any) (bool, error) { return false, nil })

	return registry
}

// RegisterGuard registers a guard under name, replacing any earlier one.
func (r *Registry) RegisterGuard(name string, guard Guard) *Registry {
	r.guards[name] = guard

	return r
}

// RegisterSetter registers a setter under name, replacing any earlier one.
func (r *Registry) RegisterSetter(name string, setter Setter) *Registry {
	r.setters[name] = setter

	return r
}

// RegisterListener registers a listener under name, replacing any earlier one.
func (r *Registry) RegisterListener(name string, listener Listener) *Registry {
	r.listeners[name] = listener

	return r
}

// RegisterCustomTransition registers a custom transition builder under name.
func (r *Registry) RegisterCustomTransition(name string, builder CustomTransitionBuilder) *Registry {
	r.customs[name] = builder

	return r
}

// Guard looks up a guard by name.
func (r *Registry) Guard(name string) (Guard, error) {
	guard, ok := r.guards[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGuard, name)
	}

	return guard, nil
}

// Setter looks up a setter by name.
func (r *Registry) Setter(name string) (Setter, error) {
	setter, ok := r.setters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetter, name)
	}

	return setter, nil
}

// Listener looks up a listener by name.
func (r *Registry) Listener(name string) (Listener, error) {
	listener, ok := r.listeners[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownListener, name)
	}

	return listener, nil
}

// BuildCustomTransition creates a transition with the builder registered as custom.
func (r *Registry) BuildCustomTransition(
	custom, name string, from []string, to string, params map[string]any,
) (*Transition, error) {
	builder, ok := r.customs[custom]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCustomTransition, custom)
	}

	transition, err := builder(name, from, to, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build custom transition %s: %w", custom, err)
	}

	if transition == nil {
		return nil, fmt.Errorf("%w: custom transition %s built nothing", ErrInvalidTransition, custom)
	}

	return transition, nil
}
