// Package visualizer generates Mermaid state diagrams from machines and configurations.
//
//nolint:varnamelen // short names idiomatic
package visualizer

import (
	"errors"
	"fmt"
	"strings"

	"facette.io/natsort"
	"github.com/amp-labs/amp-finite/statemachine"
)

// Visualizer errors.
var (
	ErrConfigNil      = errors.New("config cannot be nil")
	ErrMachineNil     = errors.New("machine cannot be nil")
	ErrNoInitialState = errors.New("graph must have an initial state")
)

type node struct {
	name      string
	stateType statemachine.StateType
}

type edge struct {
	name   string
	from   string
	to     string
	custom bool
}

type graph struct {
	nodes []node
	edges []edge
}

// GenerateMermaid converts a Config to a Mermaid state diagram.
func GenerateMermaid(config *statemachine.Config) (string, error) {
	return GenerateMermaidWithOptions(config, DefaultOptions())
}

// GenerateMermaidFromFile reads a config file and generates a Mermaid diagram.
// Callables referenced by the file do not need to be registered.
func GenerateMermaidFromFile(path string, opts Options) (string, error) {
	file, err := statemachine.ReadConfigFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	config, err := file.Structure()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	return GenerateMermaidWithOptions(config, opts)
}

// GenerateMermaidWithOptions generates a Mermaid diagram with custom options.
func GenerateMermaidWithOptions(config *statemachine.Config, opts Options) (string, error) {
	if config == nil {
		return "", ErrConfigNil
	}

	return render(graphFromConfig(config), opts)
}

// GenerateMermaidFromMachine draws a machine's graph. The bound subject's state is
// marked as current unless opts already names one.
func GenerateMermaidFromMachine(machine *statemachine.StateMachine, opts Options) (string, error) {
	if machine == nil {
		return "", ErrMachineNil
	}

	if opts.Current == "" {
		opts.Current = machine.CurrentStateName()
	}

	g := graph{}

	for _, state := range machine.States() {
		g.nodes = append(g.nodes, node{name: state.Name(), stateType: state.Type()})
	}

	for _, transition := range machine.Transitions() {
		g.addTransition(transition.Name(), transition.From(), transition.To(),
			transition.Kind() == statemachine.KindCustom)
	}

	return render(g, opts)
}

func graphFromConfig(config *statemachine.Config) graph {
	g := graph{}
	known := make(map[string]bool)

	addNode := func(name string, stateType statemachine.StateType) {
		if known[name] {
			return
		}

		known[name] = true
		g.nodes = append(g.nodes, node{name: name, stateType: stateType})
	}

	for _, state := range config.States {
		stateType := state.Type
		if stateType == "" {
			stateType = statemachine.StateTypeNormal
		}

		addNode(state.Name, stateType)
	}

	for _, transition := range config.Transitions {
		name, from, to, custom := transition.Name, transition.From, transition.To, false
		if transition.Transition != nil {
			name = transition.Transition.Name()
			from = transition.Transition.From()
			to = transition.Transition.To()
			custom = transition.Transition.Kind() == statemachine.KindCustom
		}

		// endpoints missing from the states list become normal states, like Initialize does
		for _, origin := range from {
			addNode(origin, statemachine.StateTypeNormal)
		}

		addNode(to, statemachine.StateTypeNormal)
		g.addTransition(name, from, to, custom)
	}

	return g
}

func (g *graph) addTransition(name string, from []string, to string, custom bool) {
	for _, origin := range from {
		g.edges = append(g.edges, edge{name: name, from: origin, to: to, custom: custom})
	}
}

func (g graph) initial() (string, bool) {
	for _, n := range g.nodes {
		if n.stateType == statemachine.StateTypeInitial {
			return n.name, true
		}
	}

	return "", false
}

func render(g graph, opts Options) (string, error) {
	initial, ok := g.initial()
	if !ok {
		return "", ErrNoInitialState
	}

	names := make([]string, 0, len(g.nodes))
	types := make(map[string]statemachine.StateType, len(g.nodes))

	for _, n := range g.nodes {
		names = append(names, n.name)
		types[n.name] = n.stateType
	}

	if opts.NaturalOrder {
		natsort.Sort(names)
	}

	edgesFrom := make(map[string][]edge)
	for _, e := range g.edges {
		edgesFrom[e.from] = append(edgesFrom[e.from], e)
	}

	highlightMap := make(map[string]bool)
	for _, state := range opts.HighlightPath {
		highlightMap[state] = true
	}

	var sb strings.Builder

	if opts.Fenced {
		sb.WriteString("```mermaid\n")
	}

	sb.WriteString("stateDiagram-v2\n")

	if opts.Direction != "" {
		fmt.Fprintf(&sb, "    direction %s\n", opts.Direction)
	}

	fmt.Fprintf(&sb, "    [*] --> %s\n", initial)

	for _, name := range names {
		isFinal := types[name] == statemachine.StateTypeFinal

		switch {
		case name == opts.Current:
			fmt.Fprintf(&sb, "    class %s current\n", name)
		case highlightMap[name]:
			fmt.Fprintf(&sb, "    class %s highlighted\n", name)
		case isFinal:
			fmt.Fprintf(&sb, "    class %s finalState\n", name)
		}

		for _, e := range edgesFrom[name] {
			fmt.Fprintf(&sb, "    %s --> %s%s\n", name, e.to, edgeLabel(e, opts))
		}

		if isFinal {
			fmt.Fprintf(&sb, "    %s --> [*]\n", name)
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef finalState fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px\n")
	sb.WriteString("    classDef highlighted fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")
	sb.WriteString("    classDef current fill:#e1f5ff,stroke:#01579b,stroke-width:3px\n")

	if opts.Fenced {
		sb.WriteString("```\n")
	}

	return sb.String(), nil
}

func edgeLabel(e edge, opts Options) string {
	label := ""
	if opts.ShowTransitionNames {
		label = e.name
	}

	if opts.MarkCustom && e.custom {
		label = strings.TrimSpace(label + " (custom)")
	}

	if label == "" {
		return ""
	}

	return ": " + label
}
