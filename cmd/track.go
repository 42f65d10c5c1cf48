package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/fakeyudi/stride/internal/format"
	"github.com/fakeyudi/stride/internal/geo"
	locpkg "github.com/fakeyudi/stride/internal/location"
)

var trackFollow bool

var trackCmd = &cobra.Command{
	Use:   "track [file]",
	Short: "Feed location samples to the current run from a file or stdin",
	Long: `Reads "lat,lon[,unix_ms]" lines and adds each one to the current run.
Blank lines and lines starting with # are skipped. With --follow the file is
watched and new lines are added as they are appended, until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var src locpkg.Source
		switch {
		case trackFollow && len(args) == 0:
			return errors.New("--follow needs a file to watch")
		case trackFollow:
			src = locpkg.NewFollower(args[0])
		case len(args) == 1:
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			src = locpkg.NewReader(f)
		default:
			src = locpkg.NewReader(cmd.InOrStdin())
		}

		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, stop := signal.NotifyContext(logCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		added, skipped := 0, 0
		var lastKm float64
		err = locpkg.Consume(ctx, src, func(c geo.Coordinate) error {
			rs, err := svc.AddSample(ctx, c)
			if err != nil {
				return err
			}
			added++
			lastKm = rs.TotalDistanceKm
			if trackFollow {
				fmt.Fprintf(out, "%s  %s\n", format.Distance(rs.TotalDistanceKm, cfg.Units), format.PaceIn(rs.PaceMinPerKm, cfg.Units))
			}
			return nil
		}, func(err error) {
			skipped++
			log.Warn(ctx, log.KV{K: "msg", V: "skipping sample"}, log.KV{K: "err", V: err.Error()})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		fmt.Fprintf(out, "Added %d samples", added)
		if skipped > 0 {
			fmt.Fprintf(out, " (%d skipped)", skipped)
		}
		fmt.Fprintf(out, ", total %s.\n", format.Distance(lastKm, cfg.Units))
		return nil
	},
}

func init() {
	trackCmd.Flags().BoolVarP(&trackFollow, "follow", "f", false, "keep watching the file for new samples")
	rootCmd.AddCommand(trackCmd)
}
