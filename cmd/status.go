package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/stride/internal/format"
	"github.com/fakeyudi/stride/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		rs, err := svc.Status(logCtx)
		if err != nil {
			if errors.Is(err, store.ErrNoSession) {
				fmt.Fprintln(out, "no run in progress")
				return nil
			}
			return err
		}

		fmt.Fprintf(out, "Status:    %s\n", rs.Status)
		fmt.Fprintf(out, "Started:   %s\n", rs.StartedAt.In(location()).Format(time.RFC3339))
		fmt.Fprintf(out, "Distance:  %s\n", format.Distance(rs.TotalDistanceKm, cfg.Units))
		fmt.Fprintf(out, "Duration:  %s\n", format.Duration(rs.ActiveDurationSeconds))
		fmt.Fprintf(out, "Pace:      %s\n", format.PaceIn(rs.PaceMinPerKm, cfg.Units))
		fmt.Fprintf(out, "Calories:  %s\n", format.Calories(rs.CaloriesKcal))
		fmt.Fprintf(out, "Samples:   %d\n", len(rs.Samples))
		fmt.Fprintf(out, "Pauses:    %d\n", len(rs.Pauses))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
