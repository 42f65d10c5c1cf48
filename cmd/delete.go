package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a completed run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		id, err := resolveRunID(svc, args[0])
		if err != nil {
			return err
		}
		if err := svc.DeleteRun(logCtx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s.\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
