// Package cli implements the worktime command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"worktime/internal/app"
	"worktime/internal/config"
)

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "worktime",
		Short: "Work-time derivation engine for access-control events",
		Long: `worktime derives per-employee, per-day work sessions and daily
summaries from raw access-control (badge/turnstile) events, and serves
them over an HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProcessCmd(),
		newRebuildCmd(),
		newCleanupCmd(),
		newReprocessCmd(),
		newStatsCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildApp loads configuration (with an optional batch-size override)
// and wires the application graph.
func buildApp(batchSize int) (*app.App, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if batchSize > 0 {
		cfg.DefaultBatchSize = batchSize
	}
	return app.NewWithConfig(cfg)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, so
// long-running commands stop cleanly at batch boundaries.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
