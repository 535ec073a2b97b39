package engine

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/pkg/fsops"
	"github.com/walteh/playsync/pkg/status"
)

// Allocate assigns a destination path to every pending track, FIFO, walking
// folder numbers upward from 1. Unknown folders are created with a full
// capacity worth of room, full folders are skipped without consuming the
// queue, partially filled ones take capacity minus occupancy. Terminates
// because every accepting folder strictly shrinks the queue and folder
// numbers are unbounded.
//
// With capacity 0 there is a single unbounded folder: everything goes to the
// destination root and no directory is ever created.
func Allocate(ctx context.Context, fsys fsops.FS, rep *status.Reporter, ix *FolderIndex, pending []*Track, capacity int) error {
	logger := zerolog.Ctx(ctx)

	if capacity == 0 {
		for _, t := range pending {
			t.DestPath = filepath.Join(ix.Root, t.DestName)
			t.Folder = 1
		}
		ix.Folders[1] += len(pending)
		return nil
	}

	queue := pending
	for n := 1; len(queue) > 0; n++ {
		occupancy, known := ix.Folders[n]

		var remainder int
		switch {
		case !known:
			path := ix.FolderPath(n)
			if err := fsys.MkDir(path); err != nil {
				return errors.Errorf("creating folder %d: %w", n, err)
			}
			rep.FolderCreated(path)
			ix.Folders[n] = 0
			remainder = capacity
		case occupancy >= capacity:
			continue
		default:
			remainder = capacity - occupancy
		}

		take := remainder
		if take > len(queue) {
			take = len(queue)
		}
		dir := ix.FolderPath(n)
		for _, t := range queue[:take] {
			t.DestPath = filepath.Join(dir, t.DestName)
			t.Folder = n
		}
		ix.Folders[n] += take
		queue = queue[take:]

		logger.Debug().Int("folder", n).Int("allocated", take).Msg("allocated tracks to folder")
	}
	return nil
}
