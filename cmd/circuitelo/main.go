// Package main provides the entry point for the circuitelo CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalVerbose bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "circuitelo",
		Short:   "Elo-style skill ratings for competitors across tournament circuits",
		Version: version,
	}

	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newInitCmd(),
		newIngestCmd(),
		newRecomputeCmd(),
		newMergeCmd(),
		newStandingsCmd(),
		newHistoryCmd(),
		newIdentitiesCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

// newLogger builds the CLI logger. Debug level only with --verbose.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if globalVerbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
