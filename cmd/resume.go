package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		if _, err := svc.Resume(logCtx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Resumed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
