package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newRunCmd(e *env) *cobra.Command {
	var (
		planPath  string
		duration  time.Duration
		statsPath string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a plan, and print task statistics",
		Long:  "Run a plan (the built-in default if --plan is not given) for its duration, then print a summary of each task.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := e.loadPlan(planPath)
			if err != nil {
				return err
			}
			if duration > 0 {
				plan.Duration = duration
			}
			if statsPath != "" {
				plan.Stats.Path = statsPath
			}
			level := plan.Log.Level
			if e.logLevel != "" {
				level = e.logLevel
			}

			logger, err := newLogger(cmd.ErrOrStderr(), level)
			if err != nil {
				return err
			}

			sim, err := newSimulation(plan, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := sim.close(); err != nil {
					logger.Err().Err(err).Log(`stats: close failed`)
				}
			}()

			if plan.Stats.Path != "" {
				name := planPath
				if name == "" {
					name = "default"
				}
				if err := sim.openStore(cmd.Context(), name); err != nil {
					return err
				}
			}

			res, err := sim.run(cmd.Context())
			if res != nil {
				writeResult(cmd.OutOrStdout(), res)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "Plan file (YAML)")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Override the plan duration")
	cmd.Flags().StringVar(&statsPath, "stats", "", "Record task statistics to this SQLite database")

	return cmd
}

func writeResult(w io.Writer, res *simResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tRUNS\tRATE\tAVG\tP99\tMAX\tMISSES")
	for _, s := range res.Stats {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%s\t%s\t%s\t%d\n",
			s.Name,
			s.Runs,
			s.Rate,
			time.Duration(s.AvgRuntime),
			time.Duration(s.RuntimeP99),
			time.Duration(s.RuntimeMax),
			s.Misses,
		)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\nticks=%d idle=%d runs=%d starvation_warnings=%d\n",
		res.Metrics.Ticks, res.Metrics.IdleTicks, res.Metrics.Runs, res.Metrics.StarvationWarnings)
	fmt.Fprintf(w, "timesync: factor=%.6f offset=%s corrections=%d steps=%d dropped=%d\n",
		res.Factor, time.Duration(res.Offset), res.Corrections, res.Steps, res.Dropped)
	if res.RunID != 0 {
		fmt.Fprintf(w, "stats: run %d\n", res.RunID)
	}
}
