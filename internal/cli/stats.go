package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/joeycumines/go-rtsched/internal/statsstore"
	"github.com/spf13/cobra"
)

func newStatsCmd(e *env) *cobra.Command {
	var runID int64

	cmd := &cobra.Command{
		Use:   "stats <db>",
		Short: "List recorded runs, or summarise one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.fs.Stat(args[0]); err != nil {
				return err
			}

			store, err := statsstore.Open(args[0], nil)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()

			if runID == 0 {
				runs, err := store.Runs(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, "ID\tNAME\tSTARTED\tDURATION")
				for _, r := range runs {
					var d string
					if !r.FinishedAt.IsZero() {
						d = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Name, r.StartedAt.Format(time.RFC3339), d)
				}
				return nil
			}

			summaries, err := store.Summarize(ctx, runID)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "TASK\tSAMPLES\tRUNS\tMEAN RATE\tMAX AVG\tMAX\tMAX MISSES")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%s\t%s\t%d\n",
					s.Task,
					s.Samples,
					s.Runs,
					s.MeanRate,
					time.Duration(s.MaxAvgRuntime),
					time.Duration(s.MaxRuntime),
					s.MaxMisses,
				)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&runID, "run", 0, "Summarise this run")

	return cmd
}
