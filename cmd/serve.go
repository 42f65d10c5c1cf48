package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/fakeyudi/stride/internal/api"
)

var (
	serveAddr       string
	serveSampleRate float64
	serveBurst      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tracker over a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}
		svc, closeStore, err := openService(logCtx)
		if err != nil {
			return err
		}
		defer closeStore()

		addr := serveAddr
		if addr == "" {
			addr = cfg.HTTPAddr
		}
		ctx, stop := signal.NotifyContext(logCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.Serve(ctx, addr, svc, api.WithSampleLimit(rate.Limit(serveSampleRate), serveBurst))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().Float64Var(&serveSampleRate, "sample-rate", float64(api.DefaultSampleRate), "max location samples accepted per second")
	serveCmd.Flags().IntVar(&serveBurst, "sample-burst", api.DefaultSampleBurst, "samples accepted in a burst above the rate")
	rootCmd.AddCommand(serveCmd)
}
