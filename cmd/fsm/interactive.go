package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/amp-labs/amp-finite/cli"
	"github.com/amp-labs/amp-finite/logger"
	"github.com/amp-labs/amp-finite/statemachine"
	"github.com/amp-labs/amp-finite/statemachine/redisrecord"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

const (
	quitChoice    = "[quit]"
	bannerWidth   = 40
	shutdownGrace = 2 * time.Second
)

type runOptions struct {
	redisAddr   string
	key         string
	prefix      string
	state       string
	payload     bool
	natural     bool
	stateProps  bool
	metricsAddr string
}

func runInteractive(ctx context.Context, e env, args []string) error {
	flags := newFlagSet("run", e)

	var opts runOptions

	flags.StringVar(&opts.redisAddr, "redis", "", "store the subject in Redis at this address instead of memory")
	flags.StringVar(&opts.key, "key", "", "Redis key of the subject (random when empty)")
	flags.StringVar(&opts.prefix, "prefix", "fsm:", "Redis key prefix")
	flags.StringVar(&opts.state, "state", "", "start an in-memory subject in this state")
	flags.BoolVar(&opts.payload, "payload", false, "ask for payload properties before each transition")
	flags.BoolVar(&opts.natural, "natural", false, "offer transitions in natural order")
	flags.BoolVar(&opts.stateProps, "state-props", false, "apply state properties on entry")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	if err := flags.Parse(args); err != nil {
		return err
	}

	path, err := configArg(flags)
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		stop, err := serveMetrics(ctx, opts.metricsAddr)
		if err != nil {
			return err
		}

		defer stop()
	}

	accessor, subject, load, cleanup, err := openSubject(ctx, e, opts)
	if err != nil {
		return err
	}

	defer cleanup()

	machineOpts := []statemachine.Option{
		statemachine.WithLogger(statemachine.NewDefaultLogger(logger.Get(ctx))),
	}

	if opts.stateProps {
		machineOpts = append(machineOpts, statemachine.WithStatePropertiesOnEntry())
	}

	machine, err := loadStructure(ctx, path, accessor, machineOpts...)
	if err != nil {
		return err
	}

	if err := machine.SetObject(ctx, subject); err != nil {
		return err
	}

	if err := walk(ctx, e, machine, opts); err != nil {
		return err
	}

	fields, err := load(ctx)
	if err != nil {
		return err
	}

	return writeFields(e.stdout, fields)
}

// openSubject returns the accessor and subject to drive, plus a loader that reads
// the subject back for the final summary.
func openSubject(
	ctx context.Context,
	e env,
	opts runOptions,
) (statemachine.Accessor, any, func(context.Context) (statemachine.Fields, error), func(), error) {
	if opts.redisAddr == "" {
		subject := statemachine.Fields{}
		if opts.state != "" {
			subject[statemachine.DefaultStateField] = opts.state
		}

		load := func(context.Context) (statemachine.Fields, error) { return subject, nil }

		return statemachine.NewFieldsAccessor(), subject, load, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: opts.redisAddr})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, nil, nil, nil, fmt.Errorf("connecting to redis at %s: %w", opts.redisAddr, err)
	}

	key := opts.key
	if key == "" {
		key = uuid.NewString()
	}

	_, _ = fmt.Fprintf(e.stdout, "subject: %s%s\n", opts.prefix, key)

	accessor := redisrecord.New(client, redisrecord.WithKeyPrefix(opts.prefix))
	subject := &redisrecord.Record{Key: key}

	load := func(ctx context.Context) (statemachine.Fields, error) {
		return accessor.Load(ctx, subject)
	}

	cleanup := func() {
		_ = client.Close()
	}

	return accessor, subject, load, cleanup, nil
}

func walk(ctx context.Context, e env, machine *statemachine.StateMachine, opts runOptions) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		current := machine.CurrentState()

		_, _ = fmt.Fprintln(e.stdout, cli.Banner(current.Name(), bannerWidth, cli.AlignCenter))

		if current.IsFinal() {
			_, _ = fmt.Fprintf(e.stdout, "reached final state %s\n", current.Name())

			return nil
		}

		available, err := machine.AvailableTransitions(ctx)
		if err != nil {
			return err
		}

		if len(available) == 0 {
			_, _ = fmt.Fprintf(e.stdout, "no transitions available from %s\n", current.Name())

			return nil
		}

		if opts.natural {
			available = cli.SortNatural(available)
		}

		choice, err := e.prompter.Select("Apply transition", append(slices.Clone(available), quitChoice))
		if err != nil {
			return err
		}

		if choice == quitChoice {
			return nil
		}

		var payload statemachine.Properties

		if opts.payload {
			payload, err = readPayload(e)
			if err != nil {
				return err
			}
		}

		if err := machine.Apply(ctx, choice, payload); err != nil {
			_, _ = fmt.Fprintf(e.stdout, "%s failed: %v\n", choice, err)

			continue
		}

		_, _ = fmt.Fprintf(e.stdout, "applied %s\n", choice)
	}
}

// readPayload asks for key=value lines until an empty one. Values are YAML
// scalars, so "3" becomes a number and "true" a bool.
func readPayload(e env) (statemachine.Properties, error) {
	payload := statemachine.Properties{}

	for {
		line, err := e.prompter.Line("property (key=value, empty to finish)")
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			return payload, nil
		}

		key, raw, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			_, _ = fmt.Fprintf(e.stdout, "ignoring %q: expected key=value\n", line)

			continue
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			value = strings.TrimSpace(raw)
		}

		payload[key] = value
	}
}

func writeFields(w io.Writer, fields statemachine.Fields) error {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	var sb strings.Builder

	sb.WriteString(cli.Divider(bannerWidth))

	for _, key := range keys {
		fmt.Fprintf(&sb, "%s = %v\n", key, fields[key])
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func serveMetrics(ctx context.Context, addr string) (func(), error) {
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: shutdownGrace,
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get(ctx).Error("metrics server failed", "error", err)
		}
	}()

	logger.Get(ctx).Info("serving metrics", "addr", listener.Addr().String())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)

		<-done
	}, nil
}
