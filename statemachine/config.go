package statemachine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigLoader is an interface for loading configuration documents by name.
// Applications can implement this to provide embedded or custom config loading.
type ConfigLoader interface {
	LoadByName(name string) ([]byte, error)
	ListAvailable() []string
}

var (
	// defaultConfigLoader is the global config loader used by LoadConfig.
	// Applications can set this to provide embedded configs.
	defaultConfigLoader ConfigLoader
)

// SetConfigLoader sets the default config loader for name-based loading.
func SetConfigLoader(loader ConfigLoader) {
	defaultConfigLoader = loader
}

// Config is the resolved, programmatic graph definition consumed by Initialize.
// Slices keep declaration order.
type Config struct {
	Name        string
	States      []StateConfig
	Transitions []TransitionConfig
}

// StateConfig defines a state.
type StateConfig struct {
	Name       string
	Type       StateType
	Properties Properties
}

// TransitionConfig defines a transition. When Transition is set it is registered
// as is and the other fields are ignored.
type TransitionConfig struct {
	Name       string
	From       []string
	To         string
	Properties Properties
	Setter     Setter
	Guards     []Guard
	Listeners  []Listener
	Transition *Transition
}

func (c TransitionConfig) build() *Transition {
	return NewTransition(c.Name, c.From, c.To,
		WithProperties(c.Properties),
		WithSetter(c.Setter),
		WithGuards(c.Guards...),
		WithListeners(c.Listeners...),
	)
}

// ConfigFile is the on-disk form of a graph. Callables are referenced by name and
// bound to functions by a Registry in Resolve.
//
//	name: document
//	states:
//	  draft:     {type: initial}
//	  review:    {}
//	  published: {type: final, properties: {visible: true}}
//	transitions:
//	  submit:  {from: draft, to: review, guards: [has_title]}
//	  publish: {from: [review], to: published, setter: stamp, listeners: [audit]}
//	  archive: {from: [published], to: draft, custom: archive, parameters: {keep: 3}}
type ConfigFile struct {
	Name        string
	States      []StateFile
	Transitions []TransitionFile
}

// StateFile is one entry of the states mapping.
type StateFile struct {
	Name       string     `yaml:"-"`
	Type       string     `yaml:"type"`
	Properties Properties `yaml:"properties"`
}

// TransitionFile is one entry of the transitions mapping.
type TransitionFile struct {
	Name       string         `yaml:"-"`
	From       StringList     `yaml:"from"`
	To         string         `yaml:"to"`
	Properties Properties     `yaml:"properties"`
	Setter     string         `yaml:"setter"`
	Guards     []string       `yaml:"guards"`
	Listeners  []string       `yaml:"listeners"`
	Custom     string         `yaml:"custom"`
	Parameters map[string]any `yaml:"parameters"`
}

// StringList decodes either a single scalar or a sequence of scalars.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil

			return nil
		}

		*l = StringList{value.Value}

		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}

		*l = items

		return nil
	default:
		return fmt.Errorf("%w: line %d: expected a string or a list of strings", ErrInvalidConfig, value.Line)
	}
}

// UnmarshalYAML decodes states and transitions as mappings while keeping their
// declaration order, which a Go map would lose.
func (c *ConfigFile) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name        string    `yaml:"name"`
		States      yaml.Node `yaml:"states"`
		Transitions yaml.Node `yaml:"transitions"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Name = raw.Name

	states, err := decodeOrdered[StateFile](&raw.States, "states")
	if err != nil {
		return err
	}

	for i := range states {
		states[i].value.Name = states[i].key
		c.States = append(c.States, states[i].value)
	}

	transitions, err := decodeOrdered[TransitionFile](&raw.Transitions, "transitions")
	if err != nil {
		return err
	}

	for i := range transitions {
		transitions[i].value.Name = transitions[i].key
		c.Transitions = append(c.Transitions, transitions[i].value)
	}

	return nil
}

type orderedEntry[T any] struct {
	key   string
	value T
}

func decodeOrdered[T any](node *yaml.Node, section string) ([]orderedEntry[T], error) {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, nil
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: %s must be a mapping", ErrInvalidConfig, node.Line, section)
	}

	entries := make([]orderedEntry[T], 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		var entry orderedEntry[T]
		entry.key = keyNode.Value

		if valueNode.Kind != yaml.ScalarNode || valueNode.Tag != "!!null" {
			if err := valueNode.Decode(&entry.value); err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidConfig, section, keyNode.Value, err)
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Resolve binds every callable name through registry and produces a Config ready
// for Initialize. A nil registry only knows the built-in callables.
func (c *ConfigFile) Resolve(registry *Registry) (*Config, error) {
	return c.resolve(registry, false)
}

// ResolveKnown is Resolve for callers without the application's callables. Names
// the registry doesn't know are skipped, and an unknown custom transition is
// loaded as a generic one. Built-ins such as GuardNever still apply.
func (c *ConfigFile) ResolveKnown(registry *Registry) (*Config, error) {
	return c.resolve(registry, true)
}

func (c *ConfigFile) resolve(registry *Registry, skipUnknown bool) (*Config, error) {
	if registry == nil {
		registry = NewRegistry()
	}

	config := &Config{
		Name:        c.Name,
		States:      make([]StateConfig, 0, len(c.States)),
		Transitions: make([]TransitionConfig, 0, len(c.Transitions)),
	}

	for _, state := range c.States {
		stateConfig, err := state.resolve()
		if err != nil {
			return nil, err
		}

		config.States = append(config.States, stateConfig)
	}

	for _, transition := range c.Transitions {
		transConfig, err := transition.resolve(registry, skipUnknown)
		if err != nil {
			return nil, WrapTransitionError(transition.Name, "", err)
		}

		config.Transitions = append(config.Transitions, transConfig)
	}

	return config, nil
}

// Structure returns the graph alone: states and transition endpoints, with every
// callable dropped. Custom transitions appear as plain transitions.
func (c *ConfigFile) Structure() (*Config, error) {
	config := &Config{
		Name:        c.Name,
		States:      make([]StateConfig, 0, len(c.States)),
		Transitions: make([]TransitionConfig, 0, len(c.Transitions)),
	}

	for _, state := range c.States {
		stateConfig, err := state.resolve()
		if err != nil {
			return nil, err
		}

		config.States = append(config.States, stateConfig)
	}

	for _, transition := range c.Transitions {
		config.Transitions = append(config.Transitions, TransitionConfig{
			Name:       transition.Name,
			From:       transition.From,
			To:         transition.To,
			Properties: transition.Properties,
		})
	}

	return config, nil
}

func (s StateFile) resolve() (StateConfig, error) {
	stateType, err := ParseStateType(s.Type)
	if err != nil {
		return StateConfig{}, WrapStateError(s.Name, err)
	}

	return StateConfig{
		Name:       s.Name,
		Type:       stateType,
		Properties: s.Properties,
	}, nil
}

// skipped reports whether a lookup error is an unknown name that skipUnknown forgives.
func skipped(err error, skipUnknown bool, unknown error) bool {
	return skipUnknown && errors.Is(err, unknown)
}

func (t TransitionFile) resolve(registry *Registry, skipUnknown bool) (TransitionConfig, error) {
	if len(t.From) == 0 {
		return TransitionConfig{}, ErrTransitionFromRequired
	}

	if t.To == "" {
		return TransitionConfig{}, ErrTransitionToRequired
	}

	if t.Custom != "" {
		transition, err := registry.BuildCustomTransition(t.Custom, t.Name, t.From, t.To, t.Parameters)

		switch {
		case err == nil:
			return TransitionConfig{
				Name:       t.Name,
				From:       t.From,
				To:         t.To,
				Transition: transition,
			}, nil
		case !skipped(err, skipUnknown, ErrUnknownCustomTransition):
			return TransitionConfig{}, err
		}
	}

	config := TransitionConfig{
		Name:       t.Name,
		From:       t.From,
		To:         t.To,
		Properties: t.Properties,
	}

	if t.Setter != "" {
		setter, err := registry.Setter(t.Setter)

		switch {
		case err == nil:
			config.Setter = setter
		case !skipped(err, skipUnknown, ErrUnknownSetter):
			return TransitionConfig{}, err
		}
	}

	for _, name := range t.Guards {
		guard, err := registry.Guard(name)

		switch {
		case err == nil:
			config.Guards = append(config.Guards, guard)
		case !skipped(err, skipUnknown, ErrUnknownGuard):
			return TransitionConfig{}, err
		}
	}

	for _, name := range t.Listeners {
		listener, err := registry.Listener(name)

		switch {
		case err == nil:
			config.Listeners = append(config.Listeners, listener)
		case !skipped(err, skipUnknown, ErrUnknownListener):
			return TransitionConfig{}, err
		}
	}

	return config, nil
}

// ParseConfigFile decodes a YAML document without resolving callables.
func ParseConfigFile(data []byte) (*ConfigFile, error) {
	var file ConfigFile

	err := yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &file, nil
}

// ReadConfigFile reads and decodes a YAML document by path or registered name.
func ReadConfigFile(pathOrName string) (*ConfigFile, error) {
	data, err := readConfig(pathOrName)
	if err != nil {
		return nil, err
	}

	return ParseConfigFile(data)
}

// LoadConfig loads and resolves a configuration by path or name.
// Supports two modes:
//   - Path mode: a file path (containing '/', '\', or ending in '.yaml'/'.yml') is read from the filesystem
//     Example: LoadConfig("testdata/document.yaml", registry)
//   - Name mode: a bare name is loaded via the registered ConfigLoader
//     Example: LoadConfig("document", registry)
//
// For name mode to work, you must call SetConfigLoader() first with an implementation.
func LoadConfig(pathOrName string, registry *Registry) (*Config, error) {
	data, err := readConfig(pathOrName)
	if err != nil {
		return nil, err
	}

	return LoadConfigFromBytes(data, registry)
}

// LoadConfigFromBytes decodes and resolves a YAML document.
func LoadConfigFromBytes(data []byte, registry *Registry) (*Config, error) {
	file, err := ParseConfigFile(data)
	if err != nil {
		return nil, err
	}

	return file.Resolve(registry)
}

// LoadConfigFromFS loads a configuration from a filesystem such as embed.FS.
func LoadConfigFromFS(fsys fs.FS, path string, registry *Registry) (*Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS: %w", err)
	}

	return LoadConfigFromBytes(data, registry)
}

func readConfig(pathOrName string) ([]byte, error) {
	lower := strings.ToLower(pathOrName)

	isPath := strings.Contains(pathOrName, "/") ||
		strings.Contains(pathOrName, `\`) ||
		strings.HasSuffix(lower, ".yaml") ||
		strings.HasSuffix(lower, ".yml")

	if isPath {
		data, err := os.ReadFile(pathOrName) //nolint:gosec // Intentional path-based loading
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", pathOrName, err)
		}

		return data, nil
	}

	if defaultConfigLoader == nil {
		return nil, fmt.Errorf("no config loader registered; use SetConfigLoader() or provide a file path")
	}

	data, err := defaultConfigLoader.LoadByName(pathOrName)
	if err != nil {
		available := defaultConfigLoader.ListAvailable()

		return nil, fmt.Errorf("failed to load config %q (available: %v): %w", pathOrName, available, err)
	}

	return data, nil
}

// NewFromConfig creates a machine and initializes it from config. The config name
// becomes the machine name unless an option overrides it.
func NewFromConfig(ctx context.Context, accessor Accessor, config *Config, opts ...Option) (*StateMachine, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}

	if config.Name != "" {
		opts = append([]Option{WithName(config.Name)}, opts...)
	}

	machine := New(accessor, opts...)

	if err := machine.Initialize(ctx, *config); err != nil {
		return nil, err
	}

	return machine, nil
}
