package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin a new run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		rs, err := svc.Start(logCtx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Run started at %s (%s).\n",
			rs.StartedAt.In(location()).Format(time.Kitchen), rs.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
