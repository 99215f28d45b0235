package statemachine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func documentConfig() Config {
	return Config{
		Name: "document",
		States: []StateConfig{
			{Name: "draft", Type: StateTypeInitial},
			{Name: "proposed"},
			{Name: "accepted", Type: StateTypeFinal},
			{Name: "refused", Type: StateTypeFinal},
		},
		Transitions: []TransitionConfig{
			{Name: "propose", From: []string{"draft"}, To: "proposed", Properties: Properties{"foo": "bar"}},
			{Name: "accept", From: []string{"proposed"}, To: "accepted"},
			{Name: "refuse", From: []string{"proposed"}, To: "accepted"},
		},
	}
}

func newDocumentMachine(t *testing.T, opts ...Option) *StateMachine {
	t.Helper()

	machine := NewFieldsMachine(opts...)
	require.NoError(t, machine.Initialize(t.Context(), documentConfig()))

	return machine
}

func TestDocumentWorkflow(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)
	subject := Fields{}

	require.NoError(t, machine.SetObject(ctx, subject))
	assert.Equal(t, "draft", machine.CurrentStateName())
	assert.Equal(t, "draft", subject["state"])

	allowed, err := machine.Can(ctx, "accept")
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, machine.Apply(ctx, "propose", nil))
	assert.Equal(t, "proposed", machine.CurrentStateName())

	require.NoError(t, machine.Apply(ctx, "accept", nil))
	assert.Equal(t, "accepted", machine.CurrentStateName())

	err = machine.Apply(ctx, "refuse", nil)
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.True(t, IsIllegalTransition(err))

	var transErr *TransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, "refuse", transErr.Transition)
	assert.Equal(t, "accepted", transErr.State)

	assert.Equal(t, "accepted", machine.CurrentStateName())
	assert.Equal(t, "accepted", subject["state"])
}

func TestSetObject(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	t.Run("uses stored state", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		subject := Fields{"state": "proposed"}

		require.NoError(t, machine.SetObject(ctx, subject))
		assert.Equal(t, "proposed", machine.CurrentStateName())
		assert.Equal(t, "proposed", machine.CurrentState().Name())
		assert.True(t, machine.IsBound())
	})

	t.Run("initializes subject without state", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		subject := map[string]any{"title": "x"}

		require.NoError(t, machine.SetObject(ctx, subject))
		assert.Equal(t, "draft", machine.CurrentStateName())
		assert.Equal(t, "draft", subject["state"])
	})

	t.Run("no initial state", func(t *testing.T) {
		t.Parallel()

		machine := NewFieldsMachine()
		require.NoError(t, machine.DefineState("proposed", StateTypeNormal, nil))

		err := machine.SetObject(ctx, Fields{})
		require.ErrorIs(t, err, ErrNoInitialState)
		assert.False(t, machine.IsBound())
		assert.Empty(t, machine.CurrentStateName())
	})

	t.Run("stored state unknown to graph", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)

		err := machine.SetObject(ctx, Fields{"state": "archived"})
		require.ErrorIs(t, err, ErrStateNotFound)

		var stateErr *StateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "archived", stateErr.State)
	})

	t.Run("rebinding discards previous subject", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		first := Fields{}
		second := Fields{"state": "proposed"}

		require.NoError(t, machine.SetObject(ctx, first))
		require.NoError(t, machine.SetObject(ctx, second))

		assert.Equal(t, "proposed", machine.CurrentStateName())
		assert.Equal(t, second, machine.Object())
	})

	t.Run("unsupported subject", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)

		err := machine.SetObject(ctx, "not a bag")
		require.ErrorIs(t, err, ErrUnsupportedSubject)
	})
}

func TestInitialStateIsFirstDeclared(t *testing.T) {
	t.Parallel()

	machine := NewFieldsMachine()
	require.NoError(t, machine.DefineState("proposed", StateTypeNormal, nil))
	require.NoError(t, machine.DefineState("draft", StateTypeInitial, nil))
	require.NoError(t, machine.DefineState("imported", StateTypeInitial, nil))

	name, err := machine.InitialStateName()
	require.NoError(t, err)
	assert.Equal(t, "draft", name)
}

func TestCan(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	t.Run("unknown transition", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		require.NoError(t, machine.SetObject(ctx, Fields{}))

		allowed, err := machine.Can(ctx, "foobar")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("from initial and normal states", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		require.NoError(t, machine.SetObject(ctx, Fields{}))

		allowed, err := machine.Can(ctx, "propose")
		require.NoError(t, err)
		assert.True(t, allowed)

		require.NoError(t, machine.SetObject(ctx, Fields{"state": "proposed"}))

		allowed, err = machine.Can(ctx, "propose")
		require.NoError(t, err)
		assert.False(t, allowed)

		allowed, err = machine.Can(ctx, "accept")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("unbound", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)

		_, err := machine.Can(ctx, "propose")
		require.ErrorIs(t, err, ErrNotBound)
	})

	t.Run("graph membership wins over passing guards", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		require.NoError(t, machine.DefineTransition("skip", []string{"proposed"}, "accepted",
			WithGuards(func(context.Context, any) (bool, error) { return true, nil })))
		require.NoError(t, machine.SetObject(ctx, Fields{}))

		allowed, err := machine.Can(ctx, "skip")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("guard error propagates", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		require.NoError(t, machine.DefineTransition("check", []string{"draft"}, "proposed",
			WithGuards(func(context.Context, any) (bool, error) { return false, errBoom })))
		require.NoError(t, machine.SetObject(ctx, Fields{}))

		allowed, err := machine.Can(ctx, "check")
		require.ErrorIs(t, err, errBoom)
		assert.False(t, allowed)

		err = machine.Apply(ctx, "check", nil)
		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, "draft", machine.CurrentStateName())
	})
}

func TestGuardShortCircuit(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)

	secondCalled := false
	require.NoError(t, machine.DefineTransition("test", []string{"draft"}, "test", WithGuards(
		func(context.Context, any) (bool, error) { return false, nil },
		func(context.Context, any) (bool, error) {
			secondCalled = true

			return true, nil
		},
	)))
	require.NoError(t, machine.SetObject(ctx, Fields{}))

	allowed, err := machine.Can(ctx, "test")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.False(t, secondCalled)
}

func TestGuardFollowsSubjectChanges(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)

	require.NoError(t, machine.DefineTransition("test", []string{"draft"}, "test", WithGuards(
		func(_ context.Context, subject any) (bool, error) {
			allow, _ := subject.(Fields).GetBool("allow")

			return allow, nil
		},
	)))

	subject := Fields{"allow": false}
	require.NoError(t, machine.SetObject(ctx, subject))

	allowed, err := machine.Can(ctx, "test")
	require.NoError(t, err)
	assert.False(t, allowed)

	subject["allow"] = true

	allowed, err = machine.Can(ctx, "test")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestApplyUnknownTransition(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)
	require.NoError(t, machine.SetObject(ctx, Fields{}))

	err := machine.Apply(ctx, "foobar", nil)
	require.ErrorIs(t, err, ErrUnknownTransition)
	assert.True(t, IsUnknownTransition(err))
	assert.Equal(t, "draft", machine.CurrentStateName())
}

func TestApplyUnbound(t *testing.T) {
	t.Parallel()

	machine := newDocumentMachine(t)

	err := machine.Apply(t.Context(), "propose", nil)
	require.ErrorIs(t, err, ErrNotBound)
}

func TestApplySetter(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)
	require.NoError(t, machine.DefineTransition("test", []string{"draft"}, "test",
		WithSetter(func(_ context.Context, subject any) error {
			subject.(Fields).Set("foo", "bar")

			return nil
		})))

	subject := Fields{}
	require.NoError(t, machine.SetObject(ctx, subject))
	require.NoError(t, machine.Apply(ctx, "test", nil))

	assert.Equal(t, "bar", subject["foo"])
	assert.Equal(t, "test", machine.CurrentStateName())
}

func TestApplyListenerOrder(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	var log []string

	record := func(label string) Listener {
		return func(_ context.Context, event TransitionEvent) error {
			state, _ := event.Subject().(Fields).GetString("state")
			log = append(log, label+":"+string(event.Phase())+":"+state)

			return nil
		}
	}

	machine := newDocumentMachine(t, WithName("docs"))
	require.NoError(t, machine.DefineTransition("test", []string{"draft"}, "test",
		WithListeners(record("first"), record("second"))))

	require.NoError(t, machine.SetObject(ctx, Fields{}))
	require.NoError(t, machine.Apply(ctx, "test", nil))

	expected := []string{
		"first:pre:draft",
		"second:pre:draft",
		"first:post:test",
		"second:post:test",
	}
	if diff := cmp.Diff(expected, log); diff != "" {
		t.Errorf("listener calls mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEventCarriesMachineIdentity(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	var events []TransitionEvent

	machine := newDocumentMachine(t, WithName("docs"), WithID("machine-1"))
	require.NoError(t, machine.DefineTransition("test", []string{"draft"}, "test",
		WithListeners(func(_ context.Context, event TransitionEvent) error {
			events = append(events, event)

			return nil
		})))

	subject := Fields{}
	require.NoError(t, machine.SetObject(ctx, subject))
	require.NoError(t, machine.Apply(ctx, "test", nil))

	require.Len(t, events, 2)
	assert.True(t, events[0].IsPre())
	assert.True(t, events[1].IsPost())
	assert.False(t, events[0].IsTest())

	for _, event := range events {
		assert.Equal(t, "test", event.Transition().Name())
		assert.Equal(t, "draft", event.FromState())
		assert.Equal(t, "machine-1", event.MachineID())
		assert.Equal(t, "docs", event.MachineName())
		assert.Equal(t, subject, event.Subject())
	}
}

func TestApplyListenerErrorStopsSequence(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	setterCalled := false
	secondCalled := false

	machine := newDocumentMachine(t)
	require.NoError(t, machine.DefineTransition("test", []string{"draft"}, "test",
		WithSetter(func(context.Context, any) error {
			setterCalled = true

			return nil
		}),
		WithListeners(
			func(_ context.Context, event TransitionEvent) error {
				if event.IsPre() {
					return errBoom
				}

				return nil
			},
			func(context.Context, TransitionEvent) error {
				secondCalled = true

				return nil
			},
		)))

	subject := Fields{}
	require.NoError(t, machine.SetObject(ctx, subject))

	err := machine.Apply(ctx, "test", nil)
	require.ErrorIs(t, err, errBoom)
	assert.False(t, setterCalled)
	assert.False(t, secondCalled)
	assert.Equal(t, "draft", subject["state"])
	assert.Equal(t, "draft", machine.CurrentStateName())
}

func TestApplySetterFailureKeepsEarlierWrites(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)
	require.NoError(t, machine.DefineTransition("test", []string{"draft"}, "test",
		WithProperties(Properties{"foo": "bar"}),
		WithSetter(func(context.Context, any) error { return errBoom })))

	subject := Fields{}
	require.NoError(t, machine.SetObject(ctx, subject))

	err := machine.Apply(ctx, "test", nil)
	require.ErrorIs(t, err, errBoom)

	// the subject moved, the cache did not
	assert.Equal(t, "test", subject["state"])
	assert.Equal(t, "bar", subject["foo"])
	assert.Equal(t, "draft", machine.CurrentStateName())
}

func TestApplyPropertiesAndPayload(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)
	require.NoError(t, machine.DefineTransition("test", []string{"draft"}, "test",
		WithProperties(Properties{"foo": "bar", "color": "red"})))

	subject := Fields{}
	require.NoError(t, machine.SetObject(ctx, subject))
	require.NoError(t, machine.Apply(ctx, "test", Properties{"color": "blue", "extra": 1}))

	expected := Fields{"state": "test", "foo": "bar", "color": "blue", "extra": 1}
	if diff := cmp.Diff(expected, subject); diff != "" {
		t.Errorf("subject mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyStatePropertiesOnEntry(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := NewFieldsMachine(WithStatePropertiesOnEntry())
	require.NoError(t, machine.DefineState("draft", StateTypeInitial, Properties{"editable": true}))
	require.NoError(t, machine.DefineState("proposed", StateTypeNormal, Properties{"editable": false, "color": "grey"}))
	require.NoError(t, machine.DefineTransition("propose", []string{"draft"}, "proposed",
		WithProperties(Properties{"color": "orange"})))

	subject := Fields{}
	require.NoError(t, machine.SetObject(ctx, subject))
	assert.Equal(t, true, subject["editable"])

	require.NoError(t, machine.Apply(ctx, "propose", nil))
	assert.Equal(t, false, subject["editable"])
	assert.Equal(t, "orange", subject["color"])
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)
	require.NoError(t, machine.DefineTransition("redraft", []string{"proposed"}, "draft"))

	subject := Fields{}
	require.NoError(t, machine.SetObject(ctx, subject))
	require.NoError(t, machine.Apply(ctx, "propose", nil))
	require.NoError(t, machine.Apply(ctx, "redraft", nil))

	assert.Equal(t, "draft", machine.CurrentStateName())

	expected := Fields{"state": "draft", "foo": "bar"}
	if diff := cmp.Diff(expected, subject); diff != "" {
		t.Errorf("subject mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomTransition(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	t.Run("custom can is final", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		// declared from proposed, but the custom check allows it anywhere
		transition := NewCustomTransition("force", []string{"proposed"}, "accepted",
			func(context.Context, any) (bool, error) { return true, nil }, nil)
		require.NoError(t, machine.AddTransition(transition))
		require.NoError(t, machine.SetObject(ctx, Fields{}))

		allowed, err := machine.Can(ctx, "force")
		require.NoError(t, err)
		assert.True(t, allowed)

		require.NoError(t, machine.Apply(ctx, "force", nil))
		assert.Equal(t, "accepted", machine.CurrentStateName())
	})

	t.Run("custom apply hands off and resyncs", func(t *testing.T) {
		t.Parallel()

		listenerCalled := false
		machine := newDocumentMachine(t)
		transition := NewCustomTransition("archive", []string{"draft"}, "accepted", nil,
			func(ctx context.Context, accessor Accessor, subject any, payload Properties) error {
				if err := accessor.SetState(ctx, subject, "refused"); err != nil {
					return err
				}

				return accessor.ApplyProperties(ctx, subject, payload)
			})
		transition.AddListener(func(context.Context, TransitionEvent) error {
			listenerCalled = true

			return nil
		})
		require.NoError(t, machine.AddTransition(transition))

		subject := Fields{}
		require.NoError(t, machine.SetObject(ctx, subject))
		require.NoError(t, machine.Apply(ctx, "archive", Properties{"reason": "dup"}))

		assert.Equal(t, KindCustom, transition.Kind())
		assert.True(t, transition.HasApply())
		assert.False(t, transition.HasCan())
		assert.False(t, listenerCalled)
		assert.Equal(t, "refused", machine.CurrentStateName())
		assert.Equal(t, "dup", subject["reason"])
	})

	t.Run("custom apply into unknown state", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		require.NoError(t, machine.AddTransition(NewCustomTransition("warp", []string{"draft"}, "proposed", nil,
			func(ctx context.Context, accessor Accessor, subject any, _ Properties) error {
				return accessor.SetState(ctx, subject, "nowhere")
			})))
		require.NoError(t, machine.SetObject(ctx, Fields{}))

		err := machine.Apply(ctx, "warp", nil)
		require.ErrorIs(t, err, ErrStateNotFound)
		assert.Equal(t, "draft", machine.CurrentStateName())
	})

	t.Run("custom can refusing", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		require.NoError(t, machine.AddTransition(NewCustomTransition("never", []string{"draft"}, "proposed",
			func(context.Context, any) (bool, error) { return false, nil }, nil)))
		require.NoError(t, machine.SetObject(ctx, Fields{}))

		err := machine.Apply(ctx, "never", nil)
		require.ErrorIs(t, err, ErrIllegalTransition)
	})
}

func TestApplyTransitionValue(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)
	require.NoError(t, machine.SetObject(ctx, Fields{}))

	propose, ok := machine.Transition("propose")
	require.True(t, ok)

	allowed, err := machine.CanTransition(ctx, propose)
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, machine.ApplyTransition(ctx, propose, nil))
	assert.Equal(t, "proposed", machine.CurrentStateName())

	err = machine.ApplyTransition(ctx, nil, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAddTransition(t *testing.T) {
	t.Parallel()

	t.Run("creates missing states in order", func(t *testing.T) {
		t.Parallel()

		machine := NewFieldsMachine()
		require.NoError(t, machine.DefineState("draft", StateTypeInitial, nil))
		require.NoError(t, machine.Initialize(t.Context(), Config{Transitions: documentConfig().Transitions}))

		assert.Equal(t, []string{"draft", "proposed", "accepted"}, machine.StateNames())
		assert.Equal(t, []string{"propose", "accept", "refuse"}, machine.TransitionNames())

		draft, ok := machine.State("draft")
		require.True(t, ok)
		assert.Equal(t, []string{"propose"}, draft.Transitions())

		proposed, ok := machine.State("proposed")
		require.True(t, ok)
		assert.True(t, proposed.IsNormal())
	})

	t.Run("multiple origins", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		require.NoError(t, machine.DefineTransition("reset", []string{"proposed", "refused"}, "draft"))

		for _, name := range []string{"proposed", "refused"} {
			state, ok := machine.State(name)
			require.True(t, ok)
			assert.True(t, state.Can("reset"))
		}
	})

	t.Run("last write wins", func(t *testing.T) {
		t.Parallel()

		machine := newDocumentMachine(t)
		require.NoError(t, machine.DefineTransition("propose", []string{"draft"}, "refused"))

		propose, ok := machine.Transition("propose")
		require.True(t, ok)
		assert.Equal(t, "refused", propose.To())
		assert.Len(t, machine.Transitions(), 3)
	})

	t.Run("invalid definitions", func(t *testing.T) {
		t.Parallel()

		machine := NewFieldsMachine()

		require.ErrorIs(t, machine.AddTransition(nil), ErrInvalidTransition)
		require.ErrorIs(t, machine.DefineTransition("", []string{"a"}, "b"), ErrInvalidTransition)
		require.ErrorIs(t, machine.DefineTransition("x", nil, "b"), ErrTransitionFromRequired)
		require.ErrorIs(t, machine.DefineTransition("x", []string{"a"}, ""), ErrTransitionToRequired)
		require.ErrorIs(t, machine.DefineTransition("x", []string{""}, "b"), ErrInvalidTransition)
		assert.Empty(t, machine.States())
	})
}

func TestAddStateInvalid(t *testing.T) {
	t.Parallel()

	machine := NewFieldsMachine()

	require.ErrorIs(t, machine.AddState(nil), ErrInvalidState)
	require.ErrorIs(t, machine.DefineState("", StateTypeNormal, nil), ErrInvalidState)
	require.ErrorIs(t, machine.DefineState("x", "terminal", nil), ErrUnknownStateType)
}

func TestInitializeIsAdditive(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)

	// a second call touching draft only through a transition keeps what draft had
	require.NoError(t, machine.Initialize(ctx, Config{
		Transitions: []TransitionConfig{
			{Name: "delete", From: []string{"draft"}, To: "deleted"},
		},
	}))

	draft, ok := machine.State("draft")
	require.True(t, ok)
	assert.Equal(t, []string{"propose", "delete"}, draft.Transitions())
	assert.Len(t, machine.States(), 5)
	assert.Len(t, machine.Transitions(), 4)
}

func TestRedeclaredStateDropsAttachedTransitions(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)

	require.NoError(t, machine.Initialize(ctx, Config{
		States: []StateConfig{{Name: "draft", Type: StateTypeInitial}},
	}))

	draft, ok := machine.State("draft")
	require.True(t, ok)
	assert.Empty(t, draft.Transitions())
	assert.Equal(t, []string{"draft", "proposed", "accepted", "refused"}, machine.StateNames())

	// the transition itself is still registered but no longer reachable from draft
	_, ok = machine.Transition("propose")
	assert.True(t, ok)

	require.NoError(t, machine.SetObject(ctx, Fields{}))

	allowed, err := machine.Can(ctx, "propose")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAvailableTransitions(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)
	require.NoError(t, machine.DefineTransition("reject", []string{"proposed"}, "refused",
		WithGuards(func(context.Context, any) (bool, error) { return false, nil })))

	_, err := machine.AvailableTransitions(ctx)
	require.ErrorIs(t, err, ErrNotBound)

	require.NoError(t, machine.SetObject(ctx, Fields{"state": "proposed"}))

	available, err := machine.AvailableTransitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"accept", "refuse"}, available)
}

func TestMachineIdentity(t *testing.T) {
	t.Parallel()

	first := NewFieldsMachine(WithName("docs"))
	second := NewFieldsMachine()

	assert.NotEmpty(t, first.ID())
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, "docs", first.Name())
	assert.Empty(t, second.Name())
	assert.IsType(t, &FieldsAccessor{}, first.Accessor())
	assert.Nil(t, first.CurrentState())
	assert.Nil(t, first.Object())
}

func TestMachineFromContext(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	machine := newDocumentMachine(t)

	var seen *StateMachine

	require.NoError(t, machine.DefineTransition("test", []string{"draft"}, "test",
		WithSetter(func(ctx context.Context, _ any) error {
			seen, _ = MachineFromContext(ctx)

			return nil
		})))
	require.NoError(t, machine.SetObject(ctx, Fields{}))
	require.NoError(t, machine.Apply(ctx, "test", nil))

	assert.Same(t, machine, seen)

	_, ok := MachineFromContext(context.Background())
	assert.False(t, ok)
}
