package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/cmd/playsync/opts"
	"github.com/walteh/playsync/pkg/config"
	"github.com/walteh/playsync/pkg/fsops"
	"github.com/walteh/playsync/pkg/metadata"
	"github.com/walteh/playsync/pkg/stats"
)

// NewStatsCmd creates a new stats command
func NewStatsCmd(o *opts.RootOpts) *cobra.Command {
	var groupBy string

	cmd := &cobra.Command{
		Use:   "stats DESTINATION",
		Short: "Summarize the destination's contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg := *o.Config
			dest, err := filepath.Abs(args[0])
			if err != nil {
				return errors.Errorf("resolving destination path: %w", err)
			}
			cfg.Destination = dest
			if cmd.Flags().Changed("group-by") {
				cfg.GroupBy = groupBy
			}
			if err := cfg.Validate(); err != nil {
				return errors.Errorf("validating options: %w", err)
			}

			if err := stats.Run(ctx, fsops.NewOS(), metadata.NewFileReader(), &cfg, os.Stdout); err != nil {
				return errors.Errorf("collecting stats: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", config.GroupByArtist, "group rows by 'artist' or 'track'")
	return cmd
}
