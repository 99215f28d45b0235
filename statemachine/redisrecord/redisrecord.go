// Package redisrecord stores state machine subjects as Redis hashes.
//
// A subject is identified by its hash key. The state marker lives in one field
// of the hash as a plain string, even when it arrives as a property; every other
// property is JSON-encoded into its own field.
package redisrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amp-labs/amp-finite/statemachine"
	"github.com/redis/go-redis/v9"
)

// DefaultStateField is the hash field holding the state marker.
const DefaultStateField = "state"

var ErrEmptyKey = errors.New("record key is empty")

// Record references a subject stored under Key.
type Record struct {
	Key string
}

// Accessor implements statemachine.Accessor on top of a Redis client.
type Accessor struct {
	client     redis.UniversalClient
	stateField string
	prefix     string
}

var _ statemachine.Accessor = (*Accessor)(nil)

type Option func(*Accessor)

// WithStateField changes the hash field holding the state marker.
func WithStateField(field string) Option {
	return func(a *Accessor) {
		a.stateField = field
	}
}

// WithKeyPrefix is prepended to every record key.
func WithKeyPrefix(prefix string) Option {
	return func(a *Accessor) {
		a.prefix = prefix
	}
}

func New(client redis.UniversalClient, opts ...Option) *Accessor {
	accessor := &Accessor{
		client:     client,
		stateField: DefaultStateField,
	}

	for _, opt := range opts {
		opt(accessor)
	}

	return accessor
}

// NewMachine creates a machine whose subjects are Redis records.
func NewMachine(client redis.UniversalClient, opts ...statemachine.Option) *statemachine.StateMachine {
	return statemachine.New(New(client), opts...)
}

func (a *Accessor) StateField() string {
	return a.stateField
}

func (a *Accessor) GetState(ctx context.Context, subject any) (string, bool, error) {
	key, err := a.key(subject)
	if err != nil {
		return "", false, err
	}

	state, err := a.client.HGet(ctx, key, a.stateField).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("reading state of %q: %w", key, err)
	}

	if state == "" {
		return "", false, nil
	}

	return state, true, nil
}

func (a *Accessor) SetState(ctx context.Context, subject any, state string) error {
	key, err := a.key(subject)
	if err != nil {
		return err
	}

	if err := a.client.HSet(ctx, key, a.stateField, state).Err(); err != nil {
		return fmt.Errorf("writing state of %q: %w", key, err)
	}

	return nil
}

func (a *Accessor) ApplyProperties(ctx context.Context, subject any, properties statemachine.Properties) error {
	if len(properties) == 0 {
		return nil
	}

	key, err := a.key(subject)
	if err != nil {
		return err
	}

	values := make(map[string]any, len(properties))

	for field, value := range properties {
		if field == a.stateField {
			state, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: field %q holds %T", statemachine.ErrInvalidStateValue, field, value)
			}

			values[field] = state

			continue
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding property %q: %w", field, err)
		}

		values[field] = string(encoded)
	}

	if err := a.client.HSet(ctx, key, values).Err(); err != nil {
		return fmt.Errorf("writing properties of %q: %w", key, err)
	}

	return nil
}

func (a *Accessor) CallGuards(ctx context.Context, subject any, guards []statemachine.Guard) (bool, error) {
	return statemachine.EvaluateGuards(ctx, subject, guards)
}

// Load reads the whole record. Property fields are decoded from JSON; the state
// marker and any field that isn't valid JSON are returned as plain strings.
func (a *Accessor) Load(ctx context.Context, subject any) (statemachine.Fields, error) {
	key, err := a.key(subject)
	if err != nil {
		return nil, err
	}

	raw, err := a.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}

	fields := make(statemachine.Fields, len(raw))

	for field, value := range raw {
		if field == a.stateField {
			fields[field] = value

			continue
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			fields[field] = value

			continue
		}

		fields[field] = decoded
	}

	return fields, nil
}

// Delete removes the record.
func (a *Accessor) Delete(ctx context.Context, subject any) error {
	key, err := a.key(subject)
	if err != nil {
		return err
	}

	return a.client.Del(ctx, key).Err()
}

func (a *Accessor) key(subject any) (string, error) {
	var key string

	switch rec := subject.(type) {
	case *Record:
		if rec == nil {
			return "", fmt.Errorf("%w: nil *Record", statemachine.ErrUnsupportedSubject)
		}

		key = rec.Key
	case Record:
		key = rec.Key
	case string:
		key = rec
	default:
		return "", fmt.Errorf("%w: %T is not a redis record", statemachine.ErrUnsupportedSubject, subject)
	}

	if key == "" {
		return "", ErrEmptyKey
	}

	return a.prefix + key, nil
}
