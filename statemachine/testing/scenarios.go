package testing

import (
	"testing"

	"github.com/amp-labs/amp-finite/statemachine"
	"github.com/stretchr/testify/require"
)

// Step is one Apply call of a scenario.
type Step struct {
	Transition string
	Payload    statemachine.Properties
	// WantErr, when set, is the error the step must fail with.
	WantErr error
}

// TestScenario represents a complete test scenario for a state machine.
type TestScenario struct {
	Name     string
	Config   *statemachine.Config
	Subject  statemachine.Fields
	Steps    []Step
	Matchers []Matcher
}

// RunScenario binds the scenario subject, applies every step and checks the matchers.
func RunScenario(t *testing.T, scenario TestScenario) {
	t.Helper()
	t.Run(scenario.Name, func(t *testing.T) {
		subject := scenario.Subject
		if subject == nil {
			subject = statemachine.Fields{}
		}

		machine := NewTestMachine(t, scenario.Config, subject)

		for _, step := range scenario.Steps {
			err := machine.Apply(t.Context(), step.Transition, step.Payload)
			if step.WantErr != nil {
				require.ErrorIs(t, err, step.WantErr, "step '%s'", step.Transition)

				continue
			}

			require.NoError(t, err, "step '%s'", step.Transition)
		}

		for _, matcher := range scenario.Matchers {
			matched, err := matcher.Match(machine)
			if !matched {
				t.Errorf("Matcher failed: %s - %v", matcher.Description(), err)
			}
		}
	})
}

// DocumentWorkflowScenario walks the document workflow to acceptance and then
// tries to refuse the accepted document.
func DocumentWorkflowScenario() TestScenario {
	return TestScenario{
		Name:   "Document Workflow",
		Config: CommonTestConfigs.Document(),
		Steps: []Step{
			{Transition: "propose"},
			{Transition: "accept"},
			{Transition: "refuse", WantErr: statemachine.ErrIllegalTransition},
		},
		Matchers: []Matcher{
			CurrentStateIs("accepted"),
			TransitionWasTaken("accept"),
			LastApplyFailed(),
		},
	}
}

// LinearWorkflowScenario creates a scenario for testing linear workflows.
func LinearWorkflowScenario() TestScenario {
	return TestScenario{
		Name:   "Linear Workflow",
		Config: CommonTestConfigs.Linear(),
		Steps:  []Step{{Transition: "advance"}, {Transition: "finish"}},
		Matchers: []Matcher{
			StateWasVisited("middle"),
			CurrentStateIs("end"),
		},
	}
}

// TurnstileScenario creates a scenario exercising properties and payload overrides.
func TurnstileScenario() TestScenario {
	return TestScenario{
		Name:   "Turnstile",
		Config: CommonTestConfigs.Turnstile(),
		Steps: []Step{
			{Transition: "push", WantErr: statemachine.ErrIllegalTransition},
			{Transition: "coin", Payload: statemachine.Properties{"coins": 1}},
		},
		Matchers: []Matcher{
			CurrentStateIs("unlocked"),
			SubjectContains("paid", true),
			SubjectContains("coins", 1),
		},
	}
}
