package testing

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/amp-labs/amp-finite/statemachine"
)

// Matcher errors.
var (
	ErrNoTrace              = errors.New("no apply trace available")
	ErrLastApplySucceeded   = errors.New("last apply completed without error")
	ErrNoMatchersPassed     = errors.New("no matchers passed")
	ErrStateNotVisited      = errors.New("state was not visited")
	ErrTransitionNotTaken   = errors.New("transition was not taken")
	ErrTransitionNotAllowed = errors.New("transition is not allowed")
	ErrTransitionAllowed    = errors.New("transition is allowed")
	ErrUnexpectedState      = errors.New("unexpected current state")
	ErrUnexpectedPath       = errors.New("unexpected path")
	ErrSubjectKeyNotExist   = errors.New("subject key does not exist")
	ErrSubjectValueMismatch = errors.New("subject value mismatch")
	ErrApplyTooSlow         = errors.New("apply exceeded time limit")
)

// Matcher defines an assertion matcher interface.
type Matcher interface {
	Match(machine *TestMachine) (bool, error)
	Description() string
}

// StateWasVisited creates a matcher that checks if a state was visited.
func StateWasVisited(name string) Matcher {
	return &stateVisitedMatcher{stateName: name}
}

type stateVisitedMatcher struct {
	stateName string
}

func (m *stateVisitedMatcher) Match(machine *TestMachine) (bool, error) {
	if machine.visited(m.stateName) {
		return true, nil
	}

	return false, fmt.Errorf("%w: '%s'", ErrStateNotVisited, m.stateName)
}

func (m *stateVisitedMatcher) Description() string {
	return fmt.Sprintf("state '%s' should be visited", m.stateName)
}

// TransitionWasTaken creates a matcher that checks if a transition was applied.
func TransitionWasTaken(name string) Matcher {
	return &transitionTakenMatcher{name: name}
}

type transitionTakenMatcher struct {
	name string
}

func (m *transitionTakenMatcher) Match(machine *TestMachine) (bool, error) {
	if machine.taken(m.name) {
		return true, nil
	}

	return false, fmt.Errorf("%w: '%s'", ErrTransitionNotTaken, m.name)
}

func (m *transitionTakenMatcher) Description() string {
	return fmt.Sprintf("transition '%s' should be taken", m.name)
}

// CurrentStateIs creates a matcher on the cached current state.
func CurrentStateIs(name string) Matcher {
	return &currentStateMatcher{name: name}
}

type currentStateMatcher struct {
	name string
}

func (m *currentStateMatcher) Match(machine *TestMachine) (bool, error) {
	actual := machine.CurrentStateName()
	if actual != m.name {
		return false, fmt.Errorf("%w: expected '%s', got '%s'", ErrUnexpectedState, m.name, actual)
	}

	return true, nil
}

func (m *currentStateMatcher) Description() string {
	return fmt.Sprintf("current state should be '%s'", m.name)
}

// SubjectContains creates a matcher that checks a key of a field-bag subject.
func SubjectContains(key string, value any) Matcher {
	return &subjectContainsMatcher{key: key, value: value}
}

type subjectContainsMatcher struct {
	key   string
	value any
}

func (m *subjectContainsMatcher) Match(machine *TestMachine) (bool, error) {
	var fields statemachine.Fields

	switch subject := machine.Object().(type) {
	case statemachine.Fields:
		fields = subject
	case map[string]any:
		fields = subject
	case *statemachine.Record:
		fields = subject.Attributes
	}

	actual, exists := fields[m.key]
	if !exists {
		return false, fmt.Errorf("%w: '%s'", ErrSubjectKeyNotExist, m.key)
	}

	if !reflect.DeepEqual(actual, m.value) {
		return false, fmt.Errorf("%w: subject[%s] = %v, expected %v", ErrSubjectValueMismatch, m.key, actual, m.value)
	}

	return true, nil
}

func (m *subjectContainsMatcher) Description() string {
	return fmt.Sprintf("subject should contain %s = %v", m.key, m.value)
}

// LastApplyFailed creates a matcher that checks if the most recent apply failed.
func LastApplyFailed() Matcher {
	return &lastApplyFailedMatcher{}
}

type lastApplyFailedMatcher struct{}

func (m *lastApplyFailedMatcher) Match(machine *TestMachine) (bool, error) {
	if len(machine.trace) == 0 {
		return false, ErrNoTrace
	}

	if machine.trace[len(machine.trace)-1].Error == nil {
		return false, ErrLastApplySucceeded
	}

	return true, nil
}

func (m *lastApplyFailedMatcher) Description() string {
	return "last apply should fail"
}

// AppliesTookLessThan creates a matcher that checks the total apply duration.
func AppliesTookLessThan(duration time.Duration) Matcher {
	return &applyDurationMatcher{maxDuration: duration}
}

type applyDurationMatcher struct {
	maxDuration time.Duration
}

func (m *applyDurationMatcher) Match(machine *TestMachine) (bool, error) {
	totalDuration := time.Duration(0)
	for _, entry := range machine.trace {
		totalDuration += entry.Duration
	}

	if totalDuration > m.maxDuration {
		return false, fmt.Errorf("%w: took %s, max %s", ErrApplyTooSlow, totalDuration, m.maxDuration)
	}

	return true, nil
}

func (m *applyDurationMatcher) Description() string {
	return fmt.Sprintf("applies should take less than %s", m.maxDuration)
}

// All creates a matcher that requires all sub-matchers to pass.
func All(matchers ...Matcher) Matcher {
	return &allMatcher{matchers: matchers}
}

type allMatcher struct {
	matchers []Matcher
}

func (m *allMatcher) Match(machine *TestMachine) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(machine)
		if !matched || err != nil {
			return false, err
		}
	}

	return true, nil
}

func (m *allMatcher) Description() string {
	return "all matchers should pass"
}

// Any creates a matcher that requires at least one sub-matcher to pass.
func Any(matchers ...Matcher) Matcher {
	return &anyMatcher{matchers: matchers}
}

type anyMatcher struct {
	matchers []Matcher
}

func (m *anyMatcher) Match(machine *TestMachine) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(machine)
		if matched && err == nil {
			return true, nil
		}
	}

	return false, ErrNoMatchersPassed
}

func (m *anyMatcher) Description() string {
	return "at least one matcher should pass"
}
