package statemachine

import (
	"maps"
	"slices"
)

// State is a named node of the graph.
type State struct {
	name        string
	stateType   StateType
	properties  Properties
	transitions []string
	allowed     map[string]struct{}
}

// NewState creates a new state. An empty type defaults to StateTypeNormal.
// The properties are copied.
func NewState(name string, stateType StateType, properties Properties) *State {
	if stateType == "" {
		stateType = StateTypeNormal
	}

	return &State{
		name:       name,
		stateType:  stateType,
		properties: maps.Clone(properties),
		allowed:    make(map[string]struct{}),
	}
}

func (s *State) Name() string {
	return s.name
}

func (s *State) Type() StateType {
	return s.stateType
}

func (s *State) IsInitial() bool {
	return s.stateType == StateTypeInitial
}

func (s *State) IsNormal() bool {
	return s.stateType == StateTypeNormal
}

func (s *State) IsFinal() bool {
	return s.stateType == StateTypeFinal
}

// Properties returns a copy of the state's static properties.
func (s *State) Properties() Properties {
	return maps.Clone(s.properties)
}

// SetProperties replaces the state's static properties with a copy of properties.
func (s *State) SetProperties(properties Properties) *State {
	s.properties = maps.Clone(properties)

	return s
}

// AddTransition appends a transition name to the allowed set.
// Duplicates are kept in the ordered list.
func (s *State) AddTransition(name string) *State {
	s.transitions = append(s.transitions, name)
	s.allowed[name] = struct{}{}

	return s
}

// AddTransitions appends several transition names in order.
func (s *State) AddTransitions(names ...string) *State {
	for _, name := range names {
		s.AddTransition(name)
	}

	return s
}

// Transitions returns the allowed transition names in insertion order.
func (s *State) Transitions() []string {
	return slices.Clone(s.transitions)
}

// Can reports whether the named transition may leave this state.
func (s *State) Can(transition string) bool {
	_, ok := s.allowed[transition]

	return ok
}
