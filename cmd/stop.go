package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/stride/internal/format"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Finish the current run and save it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := svc.Stop(logCtx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, format.ShareSummary(res.Run, cfg.Units, location()))
		for _, ev := range res.Unlocked {
			fmt.Fprintf(out, "🏆 Achievement unlocked: %s (%s)\n", ev.Title, ev.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
