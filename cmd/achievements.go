package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var achievementsReset bool

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and progress towards them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		if achievementsReset {
			if err := svc.ResetAchievements(logCtx); err != nil {
				return err
			}
			fmt.Fprintln(out, "All achievements locked again.")
			return nil
		}

		items, err := svc.Achievements(logCtx)
		if err != nil {
			return err
		}
		unlocked := 0
		for _, a := range items {
			mark := "[ ]"
			if a.Unlocked {
				mark = "[x]"
				unlocked++
			}
			fmt.Fprintf(out, "%s %-16s %-7s %3d%%  %s\n", mark, a.Title, a.Tier, a.Percent, a.Description)
		}
		fmt.Fprintf(out, "\n%d of %d unlocked\n", unlocked, len(items))
		return nil
	},
}

func init() {
	achievementsCmd.Flags().BoolVar(&achievementsReset, "reset", false, "lock every achievement again")
	rootCmd.AddCommand(achievementsCmd)
}
