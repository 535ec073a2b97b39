// Package commands holds the cobra subcommands of playsync.
package commands

import (
	"context"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/pkg/config"
	"github.com/walteh/playsync/pkg/engine"
	"github.com/walteh/playsync/pkg/fsops"
	"github.com/walteh/playsync/pkg/metadata"
	"github.com/walteh/playsync/pkg/status"
)

// trackFlags are the per-command flags shared by sync and append.
type trackFlags struct {
	dryRun          bool
	rewriteNames    bool
	shuffle         bool
	reshuffle       bool
	tracksPerFolder int
	folderTemplate  string
	extensions      []string
}

func addTrackFlags(cmd *cobra.Command, f *trackFlags) {
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "plan and report but do not touch the filesystem")
	cmd.Flags().BoolVar(&f.rewriteNames, "rewrite-names", false, "rewrite filenames as 'artist - album - title' from tags")
	cmd.Flags().BoolVar(&f.shuffle, "shuffle", false, "randomize the order new tracks land in folders")
	cmd.Flags().BoolVar(&f.reshuffle, "reshuffle", false, "redistribute existing destination files afterwards")
	cmd.Flags().IntVar(&f.tracksPerFolder, "tracks-per-folder", 0, "max tracks per numbered folder (0 = single folder)")
	cmd.Flags().StringVar(&f.folderTemplate, "folder-template", config.DefaultFolderTemplate, "folder name template, one %d placeholder")
	cmd.Flags().StringSliceVar(&f.extensions, "extensions", nil, "allowed track extensions (default from config)")
}

// applyTrackFlags overlays command-line values onto the loaded config.
// Only flags that were actually set override the config file.
func applyTrackFlags(cmd *cobra.Command, base *config.Config, args []string, f *trackFlags) (*config.Config, error) {
	cfg := *base

	dest, err := filepath.Abs(args[0])
	if err != nil {
		return nil, errors.Errorf("resolving destination path: %w", err)
	}
	cfg.Destination = dest
	cfg.Playlists = args[1:]
	cfg.DryRun = f.dryRun

	flags := cmd.Flags()
	if flags.Changed("rewrite-names") {
		cfg.RewriteNames = f.rewriteNames
	}
	if flags.Changed("shuffle") {
		cfg.Shuffle = f.shuffle
	}
	if flags.Changed("reshuffle") {
		cfg.Reshuffle = f.reshuffle
	}
	if flags.Changed("tracks-per-folder") {
		cfg.TracksPerFolder = f.tracksPerFolder
	}
	if flags.Changed("folder-template") {
		cfg.FolderTemplate = f.folderTemplate
	}
	if flags.Changed("extensions") {
		cfg.Extensions = f.extensions
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating options: %w", err)
	}
	return &cfg, nil
}

// newEngine wires the engine for one run: real filesystem, dhowden tag
// reader, wall-clock seeded randomness, and the dry-run decorator when asked.
func newEngine(ctx context.Context, cfg *config.Config) *engine.Engine {
	rep := status.NewReporter(ctx, cfg.Quiet, cfg.DryRun)

	var fsys fsops.FS = fsops.NewOS()
	if cfg.DryRun {
		fsys = fsops.NewDryRun(fsys, rep)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return engine.New(fsys, metadata.NewFileReader(), rep, rng, cfg)
}
