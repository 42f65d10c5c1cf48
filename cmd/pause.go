package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/stride/internal/format"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the current run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		rs, err := svc.Pause(logCtx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Paused at %s, %s.\n",
			format.Duration(rs.ActiveDurationSeconds),
			format.Distance(rs.TotalDistanceKm, cfg.Units))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
}
