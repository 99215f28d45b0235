package statemachine

// Phase tags the moment a TransitionEvent is dispatched at.
type Phase string

const (
	PhasePre  Phase = "pre"
	PhasePost Phase = "post"
	PhaseTest Phase = "test"
)

// TransitionEvent is the immutable snapshot handed to listeners.
type TransitionEvent struct {
	transition *Transition
	subject    any
	phase      Phase
	fromState  string
	machineID  string
	machine    string
}

// NewTransitionEvent creates an event. The engine fills in the source state and
// machine identity; events built by hand carry only what is passed here.
func NewTransitionEvent(transition *Transition, subject any, phase Phase) TransitionEvent {
	return TransitionEvent{
		transition: transition,
		subject:    subject,
		phase:      phase,
	}
}

func (e TransitionEvent) Transition() *Transition {
	return e.transition
}

func (e TransitionEvent) Subject() any {
	return e.subject
}

func (e TransitionEvent) Phase() Phase {
	return e.phase
}

func (e TransitionEvent) IsPre() bool {
	return e.phase == PhasePre
}

func (e TransitionEvent) IsPost() bool {
	return e.phase == PhasePost
}

func (e TransitionEvent) IsTest() bool {
	return e.phase == PhaseTest
}

// FromState is the state the subject was in when the transition started.
func (e TransitionEvent) FromState() string {
	return e.fromState
}

// MachineID identifies the machine instance that dispatched the event.
func (e TransitionEvent) MachineID() string {
	return e.machineID
}

// MachineName is the optional name given with WithName.
func (e TransitionEvent) MachineName() string {
	return e.machine
}
