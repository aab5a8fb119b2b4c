// Command fluxdemo replays a script of actions against the counter and
// todos stores and logs every state change.
//
// Usage:
//
//	fluxdemo [-config script.toml]
//
// A script looks like:
//
//	log_level = "debug"
//
//	[[action]]
//	type = "increment"
//
//	[[action]]
//	type = "setTodo"
//	data = { id = 0, desc = "Do important thing" }
//
// Without -config the built-in walkthrough is replayed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fluxury/fluxury"
	"github.com/fluxury/fluxury/action"
	audithook "github.com/fluxury/fluxury/audit_hook"
	"github.com/fluxury/fluxury/compose"
	"github.com/fluxury/fluxury/middleware"
	"github.com/fluxury/fluxury/observability"
)

func main() {
	path := flag.String("config", "", "path to a TOML action script")
	flag.Parse()

	cfg, err := loadScript(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fluxdemo: %v\n", err)
		os.Exit(1)
	}
	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fluxdemo: %v\n", err)
		os.Exit(1)
	}
}

// run wires a dispatcher with the counter and todos stores, replays the
// script and writes the final state to out.
func run(ctx context.Context, cfg scriptConfig, out io.Writer) error {
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel}))

	metrics := observability.NewMetricsExtension()
	audit := audithook.New(audithook.RecorderFunc(func(ctx context.Context, evt *audithook.AuditEvent) error {
		logger.DebugContext(ctx, "audit",
			slog.String("action", evt.Action),
			slog.String("resource", evt.Resource),
			slog.String("resource_id", evt.ResourceID),
			slog.String("outcome", evt.Outcome),
		)
		return nil
	}), audithook.WithLogger(logger))

	d, err := fluxury.New(
		fluxury.WithLogger(logger),
		fluxury.WithConfig(cfg.Dispatch),
		fluxury.WithMiddleware(
			middleware.Recover(logger),
			middleware.Tracing(),
			middleware.Metrics(),
			middleware.Logging(logger),
		),
		fluxury.WithExtensions(metrics, audit),
	)
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}

	counter, err := newCounterStore(d)
	if err != nil {
		return err
	}
	todos, err := newTodosStore(d)
	if err != nil {
		return err
	}

	root, err := compose.NewRoot(d, compose.WithMembers(counter, todos))
	if err != nil {
		return err
	}
	unsubscribe, err := root.Subscribe(func(state map[string]any, a action.Action) {
		logger.InfoContext(ctx, "state changed",
			slog.String("action", a.Type),
			slog.Any("CountStore", state[counter.Name()]),
			slog.Any("TodosStore", state[todos.Name()]),
		)
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	failed := 0
	for _, step := range cfg.Actions {
		if _, err := d.Send(ctx, step.Type, step.Data); err != nil {
			failed++
			logger.ErrorContext(ctx, "dispatch failed",
				slog.String("action", step.Type),
				slog.String("error", err.Error()),
			)
		}
	}

	fmt.Fprintf(out, "CountStore: %d\n", counter.State())
	fmt.Fprintf(out, "TodosStore: %+v\n", todos.State())
	fmt.Fprintf(out, "dispatches: %.0f completed, %.0f failed\n",
		metrics.DispatchCompleted.Value(), metrics.DispatchFailed.Value())

	if failed > 0 {
		return fmt.Errorf("%d of %d actions failed", failed, len(cfg.Actions))
	}
	return nil
}
