package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/stride/internal/format"
	locpkg "github.com/fakeyudi/stride/internal/location"
)

var sampleCmd = &cobra.Command{
	Use:   "sample <lat> <lon> [unix_ms]",
	Short: "Record one location sample for the current run",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := locpkg.ParseLine(strings.Join(args, ","), time.Now())
		if err != nil {
			return err
		}

		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		rs, err := svc.AddSample(logCtx, c)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
			format.Distance(rs.TotalDistanceKm, cfg.Units),
			format.Duration(rs.ActiveDurationSeconds),
			format.PaceIn(rs.PaceMinPerKm, cfg.Units))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}
