package statemachine

import (
	"context"
	"fmt"
	"maps"
)

// DefaultStateField is the key under which FieldsAccessor stores the state marker.
const DefaultStateField = "state"

// Fields is a dynamic key/value bag usable as a subject.
type Fields map[string]any

// Get returns the value for key.
func (f Fields) Get(key string) (any, bool) {
	val, ok := f[key]

	return val, ok
}

// GetString returns the value for key when it's a string.
func (f Fields) GetString(key string) (string, bool) {
	val, ok := f[key]
	if !ok {
		return "", false
	}

	str, ok := val.(string)

	return str, ok
}

// GetBool returns the value for key when it's a bool.
func (f Fields) GetBool(key string) (bool, bool) {
	val, ok := f[key]
	if !ok {
		return false, false
	}

	b, ok := val.(bool)

	return b, ok
}

// Set stores value under key.
func (f Fields) Set(key string, value any) {
	f[key] = value
}

// FieldsAccessor integrates Fields (or plain map[string]any) subjects.
type FieldsAccessor struct {
	stateField string
}

// FieldsAccessorOption configures a FieldsAccessor.
type FieldsAccessorOption func(*FieldsAccessor)

// WithStateField changes the key holding the state marker.
func WithStateField(field string) FieldsAccessorOption {
	return func(a *FieldsAccessor) {
		a.stateField = field
	}
}

// NewFieldsAccessor creates an accessor for field-bag subjects.
func NewFieldsAccessor(opts ...FieldsAccessorOption) *FieldsAccessor {
	accessor := &FieldsAccessor{stateField: DefaultStateField}

	for _, opt := range opts {
		opt(accessor)
	}

	return accessor
}

// StateField returns the key holding the state marker.
func (a *FieldsAccessor) StateField() string {
	return a.stateField
}

func (a *FieldsAccessor) GetState(_ context.Context, subject any) (string, bool, error) {
	fields, err := asFields(subject)
	if err != nil {
		return "", false, err
	}

	val, ok := fields[a.stateField]
	if !ok || val == nil {
		return "", false, nil
	}

	state, ok := val.(string)
	if !ok {
		return "", false, fmt.Errorf("%w: field %q holds %T", ErrInvalidStateValue, a.stateField, val)
	}

	if state == "" {
		return "", false, nil
	}

	return state, true, nil
}

func (a *FieldsAccessor) SetState(_ context.Context, subject any, state string) error {
	fields, err := asFields(subject)
	if err != nil {
		return err
	}

	fields[a.stateField] = state

	return nil
}

func (a *FieldsAccessor) ApplyProperties(_ context.Context, subject any, properties Properties) error {
	if len(properties) == 0 {
		return nil
	}

	fields, err := asFields(subject)
	if err != nil {
		return err
	}

	maps.Copy(fields, properties)

	return nil
}

func (a *FieldsAccessor) CallGuards(ctx context.Context, subject any, guards []Guard) (bool, error) {
	return EvaluateGuards(ctx, subject, guards)
}

func asFields(subject any) (Fields, error) {
	switch bag := subject.(type) {
	case Fields:
		if bag == nil {
			return nil, fmt.Errorf("%w: nil Fields", ErrUnsupportedSubject)
		}

		return bag, nil
	case map[string]any:
		if bag == nil {
			return nil, fmt.Errorf("%w: nil map", ErrUnsupportedSubject)
		}

		return Fields(bag), nil
	case *Fields:
		if bag == nil || *bag == nil {
			return nil, fmt.Errorf("%w: nil *Fields", ErrUnsupportedSubject)
		}

		return *bag, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a field bag", ErrUnsupportedSubject, subject)
	}
}

// NewFieldsMachine creates a machine wired to a FieldsAccessor using the default state field.
func NewFieldsMachine(opts ...Option) *StateMachine {
	return New(NewFieldsAccessor(), opts...)
}
