package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/stride/internal/coaching"
	"github.com/fakeyudi/stride/internal/format"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the built-in coaching plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, p := range coaching.DefaultPlans() {
			fmt.Fprintf(out, "%s  %s (%s)\n", p.ID, p.Name, format.DurationWords(int64(p.TotalSeconds())))
			fmt.Fprintf(out, "    %s\n", p.Description)
			for _, s := range p.Segments {
				reps := ""
				if s.RepeatCount > 1 {
					reps = fmt.Sprintf(" x%d", s.RepeatCount)
				}
				fmt.Fprintf(out, "    - %-9s %s%s  %s /km\n", s.Kind.Title(),
					format.Duration(int64(s.DurationSeconds)), reps,
					format.PaceRange(s.TargetPaceMin, s.TargetPaceMax))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plansCmd)
}
