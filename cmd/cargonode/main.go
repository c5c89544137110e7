// Package main is the entry point for cargonode.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/cargonode/cmd/cargonode/commands"
	"go.trai.ch/cargonode/internal/app"
	"go.trai.ch/cargonode/internal/core/domain"
	_ "go.trai.ch/cargonode/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr passed in
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return domain.ExitCodeFailure
	}
	defer cleanup()
	defer closeTelemetry(components)

	// Apply options
	for _, opt := range opts {
		opt(components.App)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		failure := domain.AsFailure(err)
		// The reporter has already shown the failing step's exit.
		if failure.Kind != domain.FailureNonZeroExit {
			components.Logger.Error(err)
		}
		return failure.ProcessExitCode()
	}
	return 0
}

func closeTelemetry(components *app.Components) {
	if components.Telemetry == nil {
		return
	}
	if err := components.Telemetry.Close(); err != nil {
		components.Logger.Warn(fmt.Sprintf("failed to close telemetry: %v", err))
	}
}
