package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/cmd/playsync/opts"
	"github.com/walteh/playsync/pkg/engine"
)

// NewAppendCmd creates a new append command
func NewAppendCmd(o *opts.RootOpts) *cobra.Command {
	var flags trackFlags

	cmd := &cobra.Command{
		Use:   "append DESTINATION PLAYLIST...",
		Short: "Add playlist tracks without deleting anything",
		Long: `Append copies new playlist tracks into the destination like sync,
but keeps destination files that no playlist references. What sync
would have deleted is reported, not acted on.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := applyTrackFlags(cmd, o.Config, args, &flags)
			if err != nil {
				return err
			}

			if err := newEngine(ctx, cfg).SyncOrAppend(ctx, engine.ModeAppend); err != nil {
				return errors.Errorf("appending playlists: %w", err)
			}
			return nil
		},
	}

	addTrackFlags(cmd, &flags)
	return cmd
}
