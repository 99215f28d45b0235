// Command fsm inspects and drives state machines declared in YAML files.
//
//	fsm [-log-level info] [-log-json] <command> [flags] <config.yaml>
//
// Commands:
//
//	mermaid  render the graph as a Mermaid state diagram
//	check    load a file, list its states and transitions
//	run      walk a subject through the graph interactively
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/amp-labs/amp-finite/logger"
	"github.com/amp-labs/amp-finite/telemetry"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage error")

// env carries the process dependencies so commands can be tested in isolation.
type env struct {
	stdout   io.Writer
	stderr   io.Writer
	prompter prompter
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, e env, args []string) error
}

func commands() []command {
	return []command{
		{name: "mermaid", summary: "render the graph as a Mermaid state diagram", run: runMermaid},
		{name: "check", summary: "load a file, list its states and transitions", run: runCheck},
		{name: "run", summary: "walk a subject through the graph interactively", run: runInteractive},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], env{stdout: os.Stdout, stderr: os.Stderr, prompter: cliPrompter{}})

	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, e env) int {
	flags := flag.NewFlagSet("fsm", flag.ContinueOnError)
	flags.SetOutput(e.stderr)

	logLevel := flags.String("log-level", "warn", "minimum log level (debug, info, warn, error)")
	logJSON := flags.Bool("log-json", false, "emit logs as JSON")

	flags.Usage = func() {
		_, _ = fmt.Fprintln(e.stderr, "usage: fsm [flags] <command> [command flags] <config.yaml>")
		_, _ = fmt.Fprintln(e.stderr, "\ncommands:")

		for _, cmd := range commands() {
			_, _ = fmt.Fprintf(e.stderr, "  %-8s %s\n", cmd.name, cmd.summary)
		}

		_, _ = fmt.Fprintln(e.stderr, "\nflags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}

		return exitUsage
	}

	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		_, _ = fmt.Fprintln(e.stderr, err)

		return exitUsage
	}

	logger.ConfigureLoggingWithOptions(logger.Options{
		Subsystem: "fsm",
		JSON:      *logJSON,
		MinLevel:  level,
		Output:    e.stderr,
	})

	ctx = logger.WithSubsystem(ctx, "fsm")

	if flags.NArg() == 0 {
		flags.Usage()

		return exitUsage
	}

	name := flags.Arg(0)

	for _, cmd := range commands() {
		if cmd.name != name {
			continue
		}

		return execute(ctx, e, cmd, flags.Args()[1:])
	}

	_, _ = fmt.Fprintf(e.stderr, "unknown command %q\n", name)
	flags.Usage()

	return exitUsage
}

func execute(ctx context.Context, e env, cmd command, args []string) int {
	shutdown := setupTracing(ctx)

	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Get(ctx).Warn("tracer shutdown failed", "error", err)
		}
	}()

	err := cmd.run(ctx, e, args)

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintln(e.stderr, err)

		return exitUsage
	default:
		_, _ = fmt.Fprintf(e.stderr, "fsm %s: %v\n", cmd.name, err)

		return exitError
	}
}

func setupTracing(ctx context.Context) telemetry.ShutdownFunc {
	log := logger.Get(ctx)

	config, err := telemetry.LoadConfigFromEnv(ctx, os.Getenv("FSM_ENVIRONMENT"))
	if err != nil {
		log.Warn("ignoring telemetry settings", "error", err)

		return func(context.Context) error { return nil }
	}

	shutdown, err := telemetry.Initialize(ctx, config)
	if err != nil {
		log.Warn("tracing disabled", "error", err)

		return func(context.Context) error { return nil }
	}

	return shutdown
}

// configArg returns the single positional argument every command takes.
func configArg(flags *flag.FlagSet) (string, error) {
	if flags.NArg() != 1 {
		return "", fmt.Errorf("%w: %s expects exactly one config file, got %d arguments",
			errUsage, flags.Name(), flags.NArg())
	}

	return flags.Arg(0), nil
}

func newFlagSet(name string, e env) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(e.stderr)

	return flags
}
