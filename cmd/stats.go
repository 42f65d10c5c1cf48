package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/stride/internal/tracker"
	"github.com/fakeyudi/stride/internal/tui"
)

var statsPlain bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Browse totals, records, streaks and achievements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		data, err := loadViewData(svc)
		if err != nil {
			return err
		}
		if statsPlain || !term.IsTerminal(os.Stdout.Fd()) {
			fmt.Fprint(cmd.OutOrStdout(), tui.Plain(data))
			return nil
		}
		return tui.Run(data)
	},
}

func loadViewData(svc *tracker.Service) (tui.Data, error) {
	st, err := svc.Stats(logCtx)
	if err != nil {
		return tui.Data{}, err
	}
	runs, err := svc.History(logCtx)
	if err != nil {
		return tui.Data{}, err
	}
	ach, err := svc.Achievements(logCtx)
	if err != nil {
		return tui.Data{}, err
	}
	return tui.Data{
		Stats:        st,
		Runs:         runs,
		Achievements: ach,
		Units:        cfg.Units,
		Location:     location(),
		Now:          time.Now(),
	}, nil
}

func init() {
	statsCmd.Flags().BoolVar(&statsPlain, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(statsCmd)
}
