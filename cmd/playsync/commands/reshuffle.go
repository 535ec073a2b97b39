package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/cmd/playsync/opts"
	"github.com/walteh/playsync/pkg/config"
)

// NewReshuffleCmd creates a new reshuffle command
func NewReshuffleCmd(o *opts.RootOpts) *cobra.Command {
	var (
		dryRun         bool
		folderTemplate string
	)

	cmd := &cobra.Command{
		Use:   "reshuffle DESTINATION",
		Short: "Randomly redistribute existing tracks across folders",
		Long: `Reshuffle moves the destination's existing files between its numbered
folders at random, without reference to any playlist. Folder occupancy
counts are preserved: each folder ends up with as many free slots
consumed as it had files before.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg := *o.Config
			dest, err := filepath.Abs(args[0])
			if err != nil {
				return errors.Errorf("resolving destination path: %w", err)
			}
			cfg.Destination = dest
			cfg.DryRun = dryRun
			if cmd.Flags().Changed("folder-template") {
				cfg.FolderTemplate = folderTemplate
			}
			if err := cfg.Validate(); err != nil {
				return errors.Errorf("validating options: %w", err)
			}

			if err := newEngine(ctx, &cfg).Reshuffle(ctx); err != nil {
				return errors.Errorf("reshuffling destination: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "plan and report but do not touch the filesystem")
	cmd.Flags().StringVar(&folderTemplate, "folder-template", config.DefaultFolderTemplate, "folder name template, one %d placeholder")
	return cmd
}
