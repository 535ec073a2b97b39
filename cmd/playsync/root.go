package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/cmd/playsync/commands"
	"github.com/walteh/playsync/cmd/playsync/opts"
	"github.com/walteh/playsync/pkg/config"
)

var (
	// Flags
	configFile string
	debug      bool
	quiet      bool
)

// NewRootCmd builds the playsync command tree. Running it without a
// subcommand prints usage and exits without error.
func NewRootCmd() *cobra.Command {
	o := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "playsync",
		Short: "Copy M3U playlists onto folder-limited portable media",
		Long: `playsync reconciles playlist-defined track lists with a destination
directory tree, as found on car stereos and MP3 players with per-folder
track limits. It adds and deletes by normalized filename, optionally
rewrites names from embedded tags, distributes tracks across numbered
folders, and can reshuffle what is already there.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging().WithContext(cmd.Context())
			cmd.SetContext(ctx)

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			if quiet {
				cfg.Quiet = true
			}
			o.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addRootFlags(cmd)
	cmd.AddCommand(
		commands.NewSyncCmd(o),
		commands.NewAppendCmd(o),
		commands.NewReshuffleCmd(o),
		commands.NewStatsCmd(o),
	)
	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default .playsync.{yaml,hcl} if present)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-track output")
}

// setupLogging configures zerolog based on flags
func setupLogging() zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
	return log
}

// TODO(dr.methodical): 📝 Add usage examples to the long help text
