package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/fakeyudi/stride/internal/achievement"
	"github.com/fakeyudi/stride/internal/config"
	"github.com/fakeyudi/stride/internal/profile"
	"github.com/fakeyudi/stride/internal/store"
	"github.com/fakeyudi/stride/internal/tracker"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded runner profile.
var activeProfile *profile.Profile

// logCtx carries the clue logger for the running command.
var logCtx = context.Background()

var debug bool

var rootCmd = &cobra.Command{
	Use:          "stride",
	Short:        "Track runs, review your statistics and get coached live",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCtx = newLogContext(debug)

		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		// First-run: profile missing → run setup wizard automatically.
		// Only do this when stdin is an interactive terminal.
		if !profile.Exists() && term.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "  Welcome to stride! Looks like this is your first time.")
			if err := runSetup(cmd); err != nil {
				return err
			}
		}

		activeProfile = nil
		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		}

		if config.LoadDotEnv() {
			log.Debug(logCtx, log.KV{K: "msg", V: "loaded .env"})
		}
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		// Profile values fill in config gaps; the environment overrides both.
		activeProfile.FillConfig(&cfg)
		if err := config.ApplyEnv(&cfg); err != nil {
			return err
		}
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// newLogContext builds the clue logger: terminal format on a TTY, JSON
// otherwise.
func newLogContext(debug bool) context.Context {
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format), log.WithOutput(os.Stderr))
	if debug {
		ctx = log.Context(ctx, log.WithDebug())
	}
	return ctx
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active runner profile, or nil.
func GetProfile() *profile.Profile {
	return activeProfile
}

// runnerName is the profile name, if any.
func runnerName() string {
	if activeProfile == nil {
		return ""
	}
	return activeProfile.Name
}

// openService opens the configured store and wraps it in a tracker. The
// returned func closes the store.
func openService(ctx context.Context) (*tracker.Service, func(), error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	dir, err := store.ResolveDataDir(cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	svc, err := tracker.New(st,
		tracker.WithLocation(loc),
		tracker.WithCaloriesPerKm(cfg.CaloriesPerKm),
		tracker.WithAchievementState(achievement.NewFileState(dir)),
	)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			log.Error(ctx, err, log.KV{K: "msg", V: "closing store"})
		}
	}
	return svc, closeFn, nil
}

// location returns the configured calendar zone.
func location() *time.Location {
	loc, err := cfg.Location()
	if err != nil {
		return time.Local
	}
	return loc
}
