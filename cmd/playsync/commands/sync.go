package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/cmd/playsync/opts"
	"github.com/walteh/playsync/pkg/engine"
)

// NewSyncCmd creates a new sync command
func NewSyncCmd(o *opts.RootOpts) *cobra.Command {
	var flags trackFlags

	cmd := &cobra.Command{
		Use:   "sync DESTINATION PLAYLIST...",
		Short: "Make the destination mirror the playlists",
		Long: `Sync reconciles the destination with the merged playlists.
It will:
1. Parse the playlists and compute destination filenames
2. Diff them against the destination's current files
3. Delete destination files no playlist references
4. Allocate and copy the new tracks into numbered folders`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := applyTrackFlags(cmd, o.Config, args, &flags)
			if err != nil {
				return err
			}

			if err := newEngine(ctx, cfg).SyncOrAppend(ctx, engine.ModeSync); err != nil {
				return errors.Errorf("syncing playlists: %w", err)
			}
			return nil
		},
	}

	addTrackFlags(cmd, &flags)
	return cmd
}
