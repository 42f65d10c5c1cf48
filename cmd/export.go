package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/stride/internal/report"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write a shareable report for a completed run",
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
		run, err := svc.Run(logCtx, id)
		if err != nil {
			return err
		}

		name := exportFormat
		if name == "" && activeProfile != nil {
			name = activeProfile.DefaultFormat
		}
		renderer, err := report.RendererFor(name)
		if err != nil {
			return err
		}
		data, err := renderer.Render(report.New(run, runnerName(), cfg.Units))
		if err != nil {
			return err
		}

		if exportOutput == "-" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		path := exportOutput
		if path == "" {
			dir := "."
			if activeProfile != nil && activeProfile.OutputDir != "" {
				dir = activeProfile.OutputDir
			}
			path = filepath.Join(dir, fmt.Sprintf("stride-%s-%s%s",
				run.StartedAt.In(location()).Format("2006-01-02"), shortID(run.ID), report.Extension(name)))
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "report format: markdown or json (default from profile)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, or - for stdout")
	rootCmd.AddCommand(exportCmd)
}
