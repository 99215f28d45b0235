package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/amp-labs/amp-finite/statemachine"
)

type stateReport struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Transitions []string `json:"transitions,omitempty"`
}

type transitionReport struct {
	Name string   `json:"name"`
	From []string `json:"from"`
	To   string   `json:"to"`
}

type checkReport struct {
	Name        string             `json:"name,omitempty"`
	Initial     string             `json:"initial,omitempty"`
	States      []stateReport      `json:"states"`
	Transitions []transitionReport `json:"transitions"`
	State       string             `json:"state,omitempty"`
	Available   []string           `json:"available,omitempty"`
}

// loadStructure builds a machine from path. Only the built-in callables are
// known here: guards such as "never" apply, every application callable is skipped.
func loadStructure(
	ctx context.Context,
	path string,
	accessor statemachine.Accessor,
	opts ...statemachine.Option,
) (*statemachine.StateMachine, error) {
	file, err := statemachine.ReadConfigFile(path)
	if err != nil {
		return nil, err
	}

	config, err := file.ResolveKnown(statemachine.NewRegistry())
	if err != nil {
		return nil, err
	}

	return statemachine.NewFromConfig(ctx, accessor, config, opts...)
}

func runCheck(ctx context.Context, e env, args []string) error {
	flags := newFlagSet("check", e)

	state := flags.String("state", "", "also list the transitions available from this state")
	asJSON := flags.Bool("json", false, "print the report as JSON")

	if err := flags.Parse(args); err != nil {
		return err
	}

	path, err := configArg(flags)
	if err != nil {
		return err
	}

	machine, err := loadStructure(ctx, path, statemachine.NewFieldsAccessor())
	if err != nil {
		return err
	}

	report := buildReport(machine)

	if *state != "" {
		if err := machine.SetObject(ctx, statemachine.Fields{statemachine.DefaultStateField: *state}); err != nil {
			return err
		}

		available, err := machine.AvailableTransitions(ctx)
		if err != nil {
			return err
		}

		report.State = *state
		report.Available = available
	}

	if *asJSON {
		encoder := json.NewEncoder(e.stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(report)
	}

	return writeReport(e.stdout, report)
}

func buildReport(machine *statemachine.StateMachine) checkReport {
	report := checkReport{Name: machine.Name()}

	if initial, err := machine.InitialStateName(); err == nil {
		report.Initial = initial
	}

	for _, state := range machine.States() {
		report.States = append(report.States, stateReport{
			Name:        state.Name(),
			Type:        string(state.Type()),
			Transitions: state.Transitions(),
		})
	}

	for _, transition := range machine.Transitions() {
		report.Transitions = append(report.Transitions, transitionReport{
			Name: transition.Name(),
			From: transition.From(),
			To:   transition.To(),
		})
	}

	return report
}

func writeReport(w io.Writer, report checkReport) error {
	var sb strings.Builder

	if report.Name != "" {
		fmt.Fprintf(&sb, "machine: %s\n", report.Name)
	}

	if report.Initial == "" {
		sb.WriteString("initial: (none)\n")
	} else {
		fmt.Fprintf(&sb, "initial: %s\n", report.Initial)
	}

	fmt.Fprintf(&sb, "states (%d):\n", len(report.States))

	for _, state := range report.States {
		fmt.Fprintf(&sb, "  %-12s %s\n", state.Name, state.Type)
	}

	fmt.Fprintf(&sb, "transitions (%d):\n", len(report.Transitions))

	for _, transition := range report.Transitions {
		fmt.Fprintf(&sb, "  %-12s %s -> %s\n", transition.Name, strings.Join(transition.From, ", "), transition.To)
	}

	if report.State != "" {
		fmt.Fprintf(&sb, "available from %s: %s\n", report.State, joinOrNone(report.Available))
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}

	return strings.Join(names, ", ")
}
