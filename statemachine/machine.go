package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/amp-labs/amp-finite/maps"
	"github.com/google/uuid"
)

// StateMachine tracks the state of one bound subject over a graph of states and
// named transitions. It reads and writes the subject only through its Accessor.
//
// A StateMachine is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
type StateMachine struct {
	id       string
	name     string
	accessor Accessor
	logger   Logger

	states      *maps.OrderedMap[string, *State]
	transitions *maps.OrderedMap[string, *Transition]

	subject     any
	bound       bool
	currentName string

	statePropertiesOnEntry bool
}

// New creates an empty, unbound state machine that uses accessor to talk to subjects.
func New(accessor Accessor, opts ...Option) *StateMachine {
	machine := &StateMachine{
		id:          uuid.NewString(),
		accessor:    accessor,
		states:      maps.NewOrderedMap[string, *State](),
		transitions: maps.NewOrderedMap[string, *Transition](),
	}

	for _, opt := range opts {
		opt(machine)
	}

	return machine
}

// Initialize populates the graph from a configuration: all states first, then all
// transitions. Calling it again merges into the existing graph; it never removes anything.
func (m *StateMachine) Initialize(_ context.Context, config Config) error {
	for _, stateConfig := range config.States {
		err := m.DefineState(stateConfig.Name, stateConfig.Type, stateConfig.Properties)
		if err != nil {
			return err
		}
	}

	for _, transConfig := range config.Transitions {
		transition := transConfig.Transition
		if transition == nil {
			transition = transConfig.build()
		}

		if err := m.AddTransition(transition); err != nil {
			return err
		}
	}

	return nil
}

// AddState registers a state. A state with the same name is replaced in place, which
// drops the transitions attached to the previous definition.
func (m *StateMachine) AddState(state *State) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidState)
	}

	if state.Name() == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidState)
	}

	if _, err := ParseStateType(string(state.Type())); err != nil {
		return WrapStateError(state.Name(), err)
	}

	m.states.Add(state.Name(), state)

	return nil
}

// DefineState builds and registers a state in one call.
func (m *StateMachine) DefineState(name string, stateType StateType, properties Properties) error {
	return m.AddState(NewState(name, stateType, properties))
}

// AddTransition registers a transition under its name, replacing any earlier one.
// Endpoint states that are not yet known are created as normal states, and the
// transition name is appended to the allowed set of every origin state.
func (m *StateMachine) AddTransition(transition *Transition) error {
	if transition == nil {
		return fmt.Errorf("%w: nil transition", ErrInvalidTransition)
	}

	if transition.Name() == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTransition)
	}

	if len(transition.From()) == 0 {
		return WrapTransitionError(transition.Name(), "", fmt.Errorf("%w: %w", ErrInvalidTransition, ErrTransitionFromRequired))
	}

	if transition.To() == "" {
		return WrapTransitionError(transition.Name(), "", fmt.Errorf("%w: %w", ErrInvalidTransition, ErrTransitionToRequired))
	}

	for _, from := range transition.From() {
		if from == "" {
			return WrapTransitionError(transition.Name(), "", fmt.Errorf("%w: %w", ErrInvalidTransition, ErrTransitionFromRequired))
		}
	}

	m.transitions.Add(transition.Name(), transition)

	for _, from := range transition.From() {
		m.ensureState(from).AddTransition(transition.Name())
	}

	m.ensureState(transition.To())

	return nil
}

// DefineTransition builds and registers a generic transition in one call.
func (m *StateMachine) DefineTransition(name string, from []string, to string, opts ...TransitionOption) error {
	return m.AddTransition(NewTransition(name, from, to, opts...))
}

func (m *StateMachine) ensureState(name string) *State {
	state, ok := m.states.Get(name)
	if !ok {
		state = NewState(name, StateTypeNormal, nil)
		m.states.Add(name, state)
	}

	return state
}

// SetObject binds subject to the machine. A subject without a stored state is moved
// to the initial state, which is written back through the accessor. Binding a new
// subject discards the previous binding; a failed bind leaves it untouched.
func (m *StateMachine) SetObject(ctx context.Context, subject any) (err error) {
	ctx = m.withMachine(ctx)

	ctx, span := startSetObjectSpan(ctx, m)
	defer func() {
		endSpan(span, err)
	}()

	name, ok, err := m.accessor.GetState(ctx, subject)
	if err != nil {
		return err
	}

	initialized := !ok
	if initialized {
		initial, err := m.InitialState()
		if err != nil {
			return err
		}

		name = initial.Name()

		if err := m.accessor.SetState(ctx, subject, name); err != nil {
			return err
		}

		if m.statePropertiesOnEntry {
			if err := m.applyProperties(ctx, subject, initial.Properties()); err != nil {
				return err
			}
		}
	} else if !m.states.Contains(name) {
		return WrapStateError(name, ErrStateNotFound)
	}

	m.subject = subject
	m.bound = true
	m.currentName = name

	bindingsTotal.WithLabelValues(sanitizeMachine(m.name), fmt.Sprint(initialized)).Inc()

	if m.logger != nil {
		m.logger.ObjectBound(ctx, name, initialized)
	}

	return nil
}

// Can reports whether the named transition may be applied to the bound subject now.
// An unknown name is simply not applicable.
func (m *StateMachine) Can(ctx context.Context, name string) (bool, error) {
	transition, ok := m.transitions.Get(name)
	if !ok {
		return false, nil
	}

	return m.CanTransition(ctx, transition)
}

// CanTransition decides legality for a transition value.
//
// A custom can-function is the final answer when present. Otherwise guards run
// through the accessor and stop at the first false, then the current state must
// list the transition in its allowed set.
func (m *StateMachine) CanTransition(ctx context.Context, transition *Transition) (bool, error) {
	if transition == nil {
		return false, nil
	}

	if !m.bound {
		return false, ErrNotBound
	}

	ctx = m.withMachine(ctx)

	if transition.HasCan() {
		return transition.Can(ctx, m.subject)
	}

	if transition.HasGuards() {
		ok, err := m.accessor.CallGuards(ctx, m.subject, transition.Guards())
		if err != nil || !ok {
			return false, err
		}
	}

	current, ok := m.states.Get(m.currentName)
	if !ok {
		return false, WrapStateError(m.currentName, ErrStateNotFound)
	}

	return current.Can(transition.Name()), nil
}

// AvailableTransitions lists, in declaration order, the transitions of the current
// state that Can currently allows.
func (m *StateMachine) AvailableTransitions(ctx context.Context) ([]string, error) {
	if !m.bound {
		return nil, ErrNotBound
	}

	current, ok := m.states.Get(m.currentName)
	if !ok {
		return nil, WrapStateError(m.currentName, ErrStateNotFound)
	}

	seen := make(map[string]struct{})

	var available []string

	for _, name := range current.Transitions() {
		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}

		allowed, err := m.Can(ctx, name)
		if err != nil {
			return nil, err
		}

		if allowed {
			available = append(available, name)
		}
	}

	return available, nil
}

// Apply performs the named transition on the bound subject. The payload is merged
// onto the subject after the transition's own properties, so its keys win.
func (m *StateMachine) Apply(ctx context.Context, name string, payload Properties) error {
	transition, ok := m.transitions.Get(name)
	if !ok {
		err := WrapTransitionError(name, m.currentName, ErrUnknownTransition)
		m.reject(ctx, name, reasonUnknown, err)

		return err
	}

	return m.ApplyTransition(ctx, transition, payload)
}

// ApplyTransition performs a transition value on the bound subject.
//
// A custom apply-function takes over completely: no events are dispatched and no
// properties or setter are applied, and the cached state is re-read from the
// accessor afterwards. Otherwise the sequence is pre event, state marker, state
// properties (WithStatePropertiesOnEntry), transition properties, payload, setter,
// cache update, post event. A failing step stops the sequence; earlier writes stay.
func (m *StateMachine) ApplyTransition(ctx context.Context, transition *Transition, payload Properties) (err error) {
	if transition == nil {
		return fmt.Errorf("%w: nil transition", ErrInvalidTransition)
	}

	if !m.bound {
		return WrapTransitionError(transition.Name(), "", ErrNotBound)
	}

	ctx = m.withMachine(ctx)
	from := m.currentName

	allowed, err := m.CanTransition(ctx, transition)
	if err != nil {
		return err
	}

	if !allowed {
		err := WrapTransitionError(transition.Name(), from, ErrIllegalTransition)
		m.reject(ctx, transition.Name(), reasonIllegal, err)

		return err
	}

	ctx, span := startApplySpan(ctx, m, transition)
	start := time.Now()

	defer func() {
		m.record(ctx, transition, from, time.Since(start), err)
		endSpan(span, err)
	}()

	if transition.HasApply() {
		if err := transition.Apply(ctx, m.accessor, m.subject, payload); err != nil {
			return err
		}

		return m.resync(ctx)
	}

	destination, ok := m.states.Get(transition.To())
	if !ok {
		return WrapStateError(transition.To(), ErrStateNotFound)
	}

	if transition.HasListeners() {
		if err := transition.DispatchEvent(ctx, m.newEvent(transition, PhasePre, from)); err != nil {
			return err
		}
	}

	if err := m.accessor.SetState(ctx, m.subject, destination.Name()); err != nil {
		return err
	}

	if m.statePropertiesOnEntry {
		if err := m.applyProperties(ctx, m.subject, destination.Properties()); err != nil {
			return err
		}
	}

	if err := m.applyProperties(ctx, m.subject, transition.Properties()); err != nil {
		return err
	}

	if err := m.applyProperties(ctx, m.subject, payload); err != nil {
		return err
	}

	if transition.HasSetter() {
		if err := transition.Setter()(ctx, m.subject); err != nil {
			return err
		}
	}

	m.currentName = destination.Name()

	if transition.HasListeners() {
		if err := transition.DispatchEvent(ctx, m.newEvent(transition, PhasePost, from)); err != nil {
			return err
		}
	}

	return nil
}

// applyProperties merges non-empty property sets onto the subject.
func (m *StateMachine) applyProperties(ctx context.Context, subject any, properties Properties) error {
	if len(properties) == 0 {
		return nil
	}

	return m.accessor.ApplyProperties(ctx, subject, properties)
}

// resync refreshes the cached state after a custom apply. A subject that reports no
// state keeps the cached one.
func (m *StateMachine) resync(ctx context.Context) error {
	name, ok, err := m.accessor.GetState(ctx, m.subject)
	if err != nil {
		return err
	}

	if !ok {
		return nil
	}

	if !m.states.Contains(name) {
		return WrapStateError(name, ErrStateNotFound)
	}

	m.currentName = name

	return nil
}

func (m *StateMachine) newEvent(transition *Transition, phase Phase, from string) TransitionEvent {
	event := NewTransitionEvent(transition, m.subject, phase)
	event.fromState = from
	event.machineID = m.id
	event.machine = m.name

	return event
}

func (m *StateMachine) reject(ctx context.Context, transition, reason string, err error) {
	label := transition
	if reason == reasonUnknown {
		label = unregisteredTransition
	}

	transitionRejectionsTotal.WithLabelValues(sanitizeMachine(m.name), label, reason).Inc()

	if m.logger != nil {
		m.logger.TransitionRejected(m.withMachine(ctx), transition, m.currentName, err)
	}
}

func (m *StateMachine) record(ctx context.Context, transition *Transition, from string, duration time.Duration, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}

	machine := sanitizeMachine(m.name)

	transitionsTotal.WithLabelValues(
		machine,
		transition.Name(),
		sanitizeState(from),
		sanitizeState(m.currentName),
		outcome,
	).Inc()

	applyDuration.WithLabelValues(machine, transition.Name(), outcome).Observe(duration.Seconds())

	if m.logger == nil {
		return
	}

	if err != nil {
		m.logger.TransitionFailed(ctx, transition.Name(), from, duration, err)
	} else {
		m.logger.TransitionApplied(ctx, transition.Name(), from, m.currentName, duration)
	}
}

// InitialState returns the first registered state of type initial.
func (m *StateMachine) InitialState() (*State, error) {
	entry, ok := m.states.FindFirst(func(_ string, state *State) bool {
		return state.IsInitial()
	})
	if !ok {
		return nil, ErrNoInitialState
	}

	return entry.Value, nil
}

// InitialStateName returns the name of the initial state.
func (m *StateMachine) InitialStateName() (string, error) {
	state, err := m.InitialState()
	if err != nil {
		return "", err
	}

	return state.Name(), nil
}

// State looks up a state by name.
func (m *StateMachine) State(name string) (*State, bool) {
	return m.states.Get(name)
}

// States returns every state in declaration order.
func (m *StateMachine) States() []*State {
	return m.states.Values()
}

// StateNames returns every state name in declaration order.
func (m *StateMachine) StateNames() []string {
	return m.states.Keys()
}

// Transition looks up a transition by name.
func (m *StateMachine) Transition(name string) (*Transition, bool) {
	return m.transitions.Get(name)
}

// Transitions returns every transition in declaration order.
func (m *StateMachine) Transitions() []*Transition {
	return m.transitions.Values()
}

// TransitionNames returns every transition name in declaration order.
func (m *StateMachine) TransitionNames() []string {
	return m.transitions.Keys()
}

// CurrentState returns the cached state of the bound subject, or nil when unbound.
func (m *StateMachine) CurrentState() *State {
	if !m.bound {
		return nil
	}

	state, _ := m.states.Get(m.currentName)

	return state
}

// CurrentStateName returns the cached state name, or "" when unbound.
func (m *StateMachine) CurrentStateName() string {
	return m.currentName
}

// Object returns the bound subject, or nil when unbound.
func (m *StateMachine) Object() any {
	return m.subject
}

// IsBound reports whether SetObject has succeeded at least once.
func (m *StateMachine) IsBound() bool {
	return m.bound
}

func (m *StateMachine) Accessor() Accessor {
	return m.accessor
}

func (m *StateMachine) ID() string {
	return m.id
}

func (m *StateMachine) Name() string {
	return m.name
}
