package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/stride/internal/format"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		runs, err := svc.History(logCtx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "no runs yet")
			return nil
		}
		if historyLimit > 0 && len(runs) > historyLimit {
			runs = runs[:historyLimit]
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tDISTANCE\tTIME\tPACE\tKCAL")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
				shortID(r.ID),
				r.StartedAt.In(location()).Format("2006-01-02 15:04"),
				format.Distance(r.TotalDistanceKm, cfg.Units),
				format.Duration(r.ActiveDurationSeconds),
				format.PaceIn(r.PaceMinPerKm, cfg.Units),
				r.CaloriesKcal)
		}
		return w.Flush()
	},
}

// shortID trims a uuid to its first block for tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most n runs")
	rootCmd.AddCommand(historyCmd)
}
