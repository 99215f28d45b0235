package main

import (
	"context"
	"fmt"

	"github.com/amp-labs/amp-finite/statemachine/visualizer"
)

func runMermaid(_ context.Context, e env, args []string) error {
	flags := newFlagSet("mermaid", e)
	opts := visualizer.DefaultOptions()

	direction := flags.String("direction", opts.Direction, "diagram direction (TB, LR, BT, RL)")
	natural := flags.Bool("natural", false, "order states naturally instead of by declaration")
	current := flags.String("current", "", "state to highlight as current")
	noFence := flags.Bool("no-fence", false, "omit the ```mermaid fence")
	noNames := flags.Bool("no-names", false, "hide transition names on edges")

	if err := flags.Parse(args); err != nil {
		return err
	}

	path, err := configArg(flags)
	if err != nil {
		return err
	}

	opts = opts.
		WithDirection(*direction).
		WithNaturalOrder(*natural).
		WithCurrent(*current).
		WithFenced(!*noFence).
		WithShowTransitionNames(!*noNames)

	diagram, err := visualizer.GenerateMermaidFromFile(path, opts)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(e.stdout, diagram)

	return err
}
