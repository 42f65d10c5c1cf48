package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/stride/internal/format"
	"github.com/fakeyudi/stride/internal/report"
	"github.com/fakeyudi/stride/internal/session"
	"github.com/fakeyudi/stride/internal/stats"
	"github.com/fakeyudi/stride/internal/tui"
)

var plainOutput bool

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "View an exported run report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}

		rep, err := report.ParserFor(data).Parse(data)
		if err != nil {
			return err
		}

		if plainOutput || !term.IsTerminal(os.Stdout.Fd()) {
			printReport(cmd.OutOrStdout(), rep)
			return nil
		}
		run := rep.ToRun()
		loc := location()
		return tui.Run(tui.Data{
			Stats:    stats.Compute([]session.Run{run}, stats.WithLocation(loc), stats.WithNow(run.EndedAt)),
			Runs:     []session.Run{run},
			Units:    rep.Run.Units,
			Location: loc,
			Now:      time.Now(),
		})
	},
}

// printReport writes a plain-text rendition of rep.
func printReport(w io.Writer, rep *report.Report) {
	u := rep.Run.Units
	loc := location()
	fmt.Fprintln(w, "## Summary")
	fmt.Fprintf(w, "  Run:       %s\n", rep.Run.ID)
	if rep.Run.Runner != "" {
		fmt.Fprintf(w, "  Runner:    %s\n", rep.Run.Runner)
	}
	fmt.Fprintf(w, "  Started:   %s\n", rep.Run.StartedAt.In(loc).Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  Finished:  %s\n", rep.Run.EndedAt.In(loc).Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  Distance:  %s\n", format.Distance(rep.Run.DistanceKm, u))
	fmt.Fprintf(w, "  Duration:  %s\n", format.Duration(rep.Run.ActiveDurationSeconds))
	fmt.Fprintf(w, "  Pace:      %s\n", format.PaceIn(rep.Run.PaceMinPerKm, u))
	fmt.Fprintf(w, "  Calories:  %s\n", format.Calories(rep.Run.CaloriesKcal))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Splits")
	if len(rep.Splits) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, s := range rep.Splits {
		fmt.Fprintf(w, "  km %-3d %s  %s\n", s.Km, format.Duration(s.DurationSeconds), format.Pace(s.PaceMinPerKm))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Pauses")
	if len(rep.Pauses) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range rep.Pauses {
		end := "open"
		if p.EndedAt != nil {
			end = p.EndedAt.In(loc).Format("15:04:05")
		}
		fmt.Fprintf(w, "  %s to %s\n", p.StartedAt.In(loc).Format("15:04:05"), end)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Samples\n  %d recorded\n", len(rep.Samples))
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}
