package statemachine

// Option configures a StateMachine during construction.
type Option func(*StateMachine)

// WithName names the machine. The name shows up in logs, spans, metrics and events.
func WithName(name string) Option {
	return func(m *StateMachine) {
		m.name = name
	}
}

// WithID overrides the generated machine id.
func WithID(id string) Option {
	return func(m *StateMachine) {
		if id != "" {
			m.id = id
		}
	}
}

// WithLogger sets the logging hooks. Without it the machine does not log.
func WithLogger(logger Logger) Option {
	return func(m *StateMachine) {
		m.logger = logger
	}
}

// WithStatePropertiesOnEntry makes the machine merge a state's static properties onto
// the subject whenever it enters that state: when SetObject initializes a subject and
// during a generic apply, right after the state marker is written and before the
// transition's own properties and the payload.
func WithStatePropertiesOnEntry() Option {
	return func(m *StateMachine) {
		m.statePropertiesOnEntry = true
	}
}
