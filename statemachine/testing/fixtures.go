package testing

import (
	"context"
	"path/filepath"

	"github.com/amp-labs/amp-finite/statemachine"
)

// RecordedEvent is a TransitionEvent flattened for comparisons in tests.
type RecordedEvent struct {
	Transition string
	Phase      statemachine.Phase
	From       string
	Machine    string
}

// Recorder is a listener that keeps every event it receives.
type Recorder struct {
	events []RecordedEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Listener returns the function to attach to transitions.
func (r *Recorder) Listener() statemachine.Listener {
	return func(_ context.Context, event statemachine.TransitionEvent) error {
		r.events = append(r.events, RecordedEvent{
			Transition: event.Transition().Name(),
			Phase:      event.Phase(),
			From:       event.FromState(),
			Machine:    event.MachineName(),
		})

		return nil
	}
}

// Events returns the recorded events in order.
func (r *Recorder) Events() []RecordedEvent {
	return r.events
}

// Phases returns "transition:phase" labels in order.
func (r *Recorder) Phases() []string {
	labels := make([]string, 0, len(r.events))
	for _, event := range r.events {
		labels = append(labels, event.Transition+":"+string(event.Phase))
	}

	return labels
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.events = nil
}

// Attach adds the recorder as a listener to every transition of machine.
func (r *Recorder) Attach(machine *statemachine.StateMachine) {
	for _, transition := range machine.Transitions() {
		transition.AddListener(r.Listener())
	}
}

// LoadTestConfig loads and resolves a config from the testdata directory.
func LoadTestConfig(name string, registry *statemachine.Registry) (*statemachine.Config, error) {
	path := filepath.Join("testdata", name)

	return statemachine.LoadConfig(path, registry)
}

// CreateTestConfig creates an empty test config.
func CreateTestConfig(name string) *statemachine.Config {
	return &statemachine.Config{
		Name:        name,
		States:      []statemachine.StateConfig{},
		Transitions: []statemachine.TransitionConfig{},
	}
}

// CommonTestConfigs provides frequently used test configurations.
var CommonTestConfigs = struct {
	Document  func() *statemachine.Config
	Linear    func() *statemachine.Config
	Turnstile func() *statemachine.Config
}{
	Document: func() *statemachine.Config {
		return &statemachine.Config{
			Name: "document",
			States: []statemachine.StateConfig{
				{Name: "draft", Type: statemachine.StateTypeInitial},
				{Name: "proposed", Type: statemachine.StateTypeNormal},
				{Name: "accepted", Type: statemachine.StateTypeFinal},
				{Name: "refused", Type: statemachine.StateTypeFinal},
			},
			Transitions: []statemachine.TransitionConfig{
				{Name: "propose", From: []string{"draft"}, To: "proposed"},
				{Name: "accept", From: []string{"proposed"}, To: "accepted"},
				{Name: "refuse", From: []string{"proposed"}, To: "refused"},
			},
		}
	},
	Linear: func() *statemachine.Config {
		return &statemachine.Config{
			Name: "linear",
			States: []statemachine.StateConfig{
				{Name: "start", Type: statemachine.StateTypeInitial},
				{Name: "middle", Type: statemachine.StateTypeNormal},
				{Name: "end", Type: statemachine.StateTypeFinal},
			},
			Transitions: []statemachine.TransitionConfig{
				{Name: "advance", From: []string{"start"}, To: "middle"},
				{Name: "finish", From: []string{"middle"}, To: "end"},
			},
		}
	},
	Turnstile: func() *statemachine.Config {
		return &statemachine.Config{
			Name: "turnstile",
			States: []statemachine.StateConfig{
				{Name: "locked", Type: statemachine.StateTypeInitial},
				{Name: "unlocked", Type: statemachine.StateTypeNormal},
			},
			Transitions: []statemachine.TransitionConfig{
				{Name: "coin", From: []string{"locked"}, To: "unlocked", Properties: statemachine.Properties{"paid": true}},
				{Name: "push", From: []string{"unlocked"}, To: "locked", Properties: statemachine.Properties{"paid": false}},
			},
		}
	},
}
