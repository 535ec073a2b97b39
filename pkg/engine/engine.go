// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package engine implements the synchronization and folder-allocation core:
// filename rewriting, playlist/destination diffing, capacity-bounded folder
// allocation and the randomized reshuffle pass.
package engine

import (
	"context"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/pkg/config"
	"github.com/walteh/playsync/pkg/fsops"
	"github.com/walteh/playsync/pkg/metadata"
	"github.com/walteh/playsync/pkg/playlist"
	"github.com/walteh/playsync/pkg/status"
)

// Mode selects how the destination's extra files are handled.
type Mode int

const (
	// ModeSync deletes destination files absent from the playlists.
	ModeSync Mode = iota
	// ModeAppend keeps them, reporting what sync would have deleted.
	ModeAppend
)

// Engine owns the shared state of one run: the folder index and destination
// file list live inside it for exactly the duration of one orchestration.
// Everything is sequential; no locking, no concurrent mutation of the
// destination is assumed.
type Engine struct {
	fs   fsops.FS
	meta metadata.Reader
	rep  *status.Reporter
	rng  *rand.Rand
	cfg  *config.Config
}

// New wires an engine from its collaborators. rng drives both the optional
// shuffle of additions and the reshuffle pass; tests pass a seeded source.
func New(fsys fsops.FS, meta metadata.Reader, rep *status.Reporter, rng *rand.Rand, cfg *config.Config) *Engine {
	return &Engine{fs: fsys, meta: meta, rep: rep, rng: rng, cfg: cfg}
}

// SyncOrAppend runs the linear pipeline: parse playlists, compute destination
// names, scan the destination, diff, delete (sync mode only), shuffle the
// additions if asked, allocate to folders, copy, then optionally reshuffle.
// The reshuffle pass runs over the in-memory post-sync index rather than a
// rescan, so a dry run reports the same plan a real run would act on. Every
// precondition failure aborts before the first mutation of the step it
// guards; there is no rollback of completed steps.
func (e *Engine) SyncOrAppend(ctx context.Context, mode Mode) error {
	logger := zerolog.Ctx(ctx)

	sources, err := e.parsePlaylists(ctx)
	if err != nil {
		return err
	}

	tracks, err := e.computeNames(sources)
	if err != nil {
		return err
	}

	flat := e.cfg.TracksPerFolder == 0
	ix, err := ScanDest(ctx, e.fs, e.cfg.Destination, e.cfg.FolderTemplate, flat, e.cfg.IgnorePatterns)
	if err != nil {
		return err
	}

	additions, deletions, err := Diff(tracks, ix)
	if err != nil {
		return err
	}
	logger.Info().
		Int("playlist_tracks", len(tracks)).
		Int("additions", len(additions)).
		Int("deletions", len(deletions)).
		Msg("computed destination diff")

	if mode == ModeSync {
		if err := e.deleteFiles(ctx, ix, deletions); err != nil {
			return err
		}
	} else {
		for _, j := range deletions {
			e.rep.Kept(ix.Files[j].Name)
		}
	}

	pending := make([]*Track, 0, len(additions))
	for _, i := range additions {
		pending = append(pending, tracks[i])
	}

	// Shuffling only matters when tracks are being spread over folders.
	if e.cfg.Shuffle && !flat {
		e.rng.Shuffle(len(pending), func(i, j int) {
			pending[i], pending[j] = pending[j], pending[i]
		})
	}

	if err := Allocate(ctx, e.fs, e.rep, ix, pending, e.cfg.TracksPerFolder); err != nil {
		return err
	}

	for i, t := range pending {
		if err := e.fs.Copy(t.Source, t.DestPath); err != nil {
			return errors.Errorf("copying %s: %w", t.Source, err)
		}
		e.rep.Copied(t.DestName, i+1, len(pending))
	}
	for _, t := range pending {
		ix.Files = append(ix.Files, DestFile{Name: t.DestName, Path: t.DestPath, Folder: t.Folder})
	}

	deleted := 0
	if mode == ModeSync {
		deleted = len(deletions)
	}
	e.rep.Summaryf("%d tracks copied, %d deleted", len(pending), deleted)

	if e.cfg.Reshuffle {
		if flat {
			logger.Debug().Msg("reshuffle skipped, single-folder destination")
			return nil
		}
		return e.reshuffle(ctx, ix)
	}
	return nil
}

// Reshuffle redistributes the destination's existing files across its
// numbered folders, independent of any playlist. Standalone invocations scan
// the destination fresh; when the pass rides on SyncOrAppend it receives the
// post-sync index directly.
func (e *Engine) Reshuffle(ctx context.Context) error {
	ix, err := ScanDest(ctx, e.fs, e.cfg.Destination, e.cfg.FolderTemplate, false, e.cfg.IgnorePatterns)
	if err != nil {
		return err
	}
	return e.reshuffle(ctx, ix)
}

func (e *Engine) reshuffle(ctx context.Context, ix *FolderIndex) error {
	logger := zerolog.Ctx(ctx)

	if ix.TotalFiles() == 0 {
		logger.Info().Msg("nothing to reshuffle")
		return nil
	}

	moves, err := PlanReshuffle(e.fs, ix, e.rng)
	if err != nil {
		return errors.Errorf("planning reshuffle: %w", err)
	}
	if err := ExecuteMoves(ctx, e.fs, e.rep, moves); err != nil {
		return err
	}

	moved := 0
	for _, m := range moves {
		if m.From != m.To {
			moved++
		}
	}
	e.rep.Summaryf("%d of %d tracks moved by reshuffle", moved, len(moves))
	return nil
}

func (e *Engine) parsePlaylists(ctx context.Context) ([]string, error) {
	var sources []string
	for _, pl := range e.cfg.Playlists {
		paths, err := playlist.Parse(ctx, e.fs, e.rep, pl, e.cfg.Extensions)
		if err != nil {
			return nil, errors.Errorf("parsing playlist %s: %w", pl, err)
		}
		sources = append(sources, paths...)
	}
	return sources, nil
}

func (e *Engine) computeNames(sources []string) ([]*Track, error) {
	namer := NewNamer()
	tracks := make([]*Track, 0, len(sources))
	for _, src := range sources {
		var tags metadata.Tags
		if e.cfg.RewriteNames {
			var err error
			tags, err = e.meta.ReadTags(src)
			if err != nil {
				return nil, errors.Errorf("reading tags from %s: %w", src, err)
			}
		}
		name, err := namer.DestName(src, tags, e.cfg.RewriteNames)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, &Track{Source: src, DestName: name})
	}
	return tracks, nil
}

// deleteFiles removes the given destination files, keeps the index's
// occupancy accounting straight, and removes any folder that this pass
// emptied. Folders that were already empty before the run are left alone.
func (e *Engine) deleteFiles(ctx context.Context, ix *FolderIndex, deletions []int) error {
	if len(deletions) == 0 {
		return nil
	}

	deleted := make(map[int]bool, len(deletions))
	var emptied []int
	for _, j := range deletions {
		f := ix.Files[j]
		if err := e.fs.Delete(f.Path); err != nil {
			return errors.Errorf("deleting %s: %w", f.Path, err)
		}
		e.rep.Deleted(f.Name)
		if ix.Decrement(f.Folder) {
			emptied = append(emptied, f.Folder)
		}
		deleted[j] = true
	}

	remaining := make([]DestFile, 0, len(ix.Files)-len(deletions))
	for j, f := range ix.Files {
		if !deleted[j] {
			remaining = append(remaining, f)
		}
	}
	ix.Files = remaining

	if ix.Flat {
		return nil
	}
	sort.Ints(emptied)
	for _, n := range emptied {
		path := ix.FolderPath(n)
		if err := e.fs.RemoveDir(path); err != nil {
			return errors.Errorf("removing emptied folder %s: %w", path, err)
		}
		ix.DropFolder(n)
		e.rep.FolderRemoved(path)
	}
	return nil
}
