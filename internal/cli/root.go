// Package cli implements the rtsched command.
package cli

import (
	"io"

	"github.com/joeycumines/go-rtsched/internal/config"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// env is shared by all subcommands, and replaced in tests.
type env struct {
	fs       afero.Fs
	logLevel string
}

// NewRootCmd creates the root command, reading files from the OS.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{fs: afero.NewOsFs()})
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:          "rtsched",
		Short:        "Simulate a deadline-aware cooperative task schedule",
		Long:         "rtsched runs a plan of periodic tasks on a cooperative scheduler, with time corrected against a drifting reference clock, and reports per-task statistics.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "Log level, overriding the plan (err, warning, info, debug, trace)")

	root.AddCommand(
		newRunCmd(e),
		newValidateCmd(e),
		newInitCmd(e),
		newStatsCmd(e),
	)

	return root
}

// newLogger returns a JSON logger writing to w, at the given level name.
func newLogger(w io.Writer, level string) (*logiface.Logger[logiface.Event], error) {
	lvl, ok := config.ParseLevel(level)
	if !ok {
		return nil, &unknownLevelError{level}
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(lvl),
	).Logger(), nil
}

type unknownLevelError struct{ level string }

func (x *unknownLevelError) Error() string { return "unknown log level: " + x.level }

// loadPlan loads path, or returns the default plan if path is empty.
func (e *env) loadPlan(path string) (*config.Plan, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(e.fs, path)
}
