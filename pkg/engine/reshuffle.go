package engine

import (
	"context"
	"math/rand"
	"path/filepath"
	"sort"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/pkg/fsops"
	"github.com/walteh/playsync/pkg/status"
)

// Move is one planned relocation of an existing destination file.
type Move struct {
	From string
	To   string
}

// PlanReshuffle plans a random redistribution of every file already in the
// destination. Each folder's current occupancy is its slot budget, consumed
// one slot per placed file. Folder choice is a uniform draw over the known
// folder numbers with rejection of exhausted ones. The draw is deliberately
// not weighted by remaining capacity; the resulting bias toward folders
// chosen early is part of the tool's observable behavior and is preserved.
//
// Planning is all-or-nothing: any failure returns before a single move has
// been executed. Failures: every folder exhausted while a file still needs a
// slot (inconsistent external state), or a move target already existing on
// disk as a different file (basenames not unique across the destination).
func PlanReshuffle(fsys fsops.FS, ix *FolderIndex, rng *rand.Rand) ([]Move, error) {
	slots := make(map[int]int, len(ix.Folders))
	numbers := make([]int, 0, len(ix.Folders))
	for n, occupancy := range ix.Folders {
		slots[n] = occupancy
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	moves := make([]Move, 0, len(ix.Files))
	for _, f := range ix.Files {
		exhausted := make(map[int]bool)
		for {
			if len(exhausted) == len(numbers) {
				return nil, errors.Errorf("%w: no slot left for %s", ErrFoldersFull, f.Name)
			}
			n := numbers[rng.Intn(len(numbers))]
			if slots[n] == 0 {
				exhausted[n] = true
				continue
			}
			slots[n]--

			to := filepath.Join(ix.FolderPath(n), f.Name)
			if to != f.Path {
				exists, err := fsys.Exists(to)
				if err != nil {
					return nil, errors.Errorf("checking move target %s: %w", to, err)
				}
				if exists {
					return nil, errors.Errorf("%w: %s already exists", ErrNameCollision, to)
				}
			}
			moves = append(moves, Move{From: f.Path, To: to})
			break
		}
	}
	return moves, nil
}

// ExecuteMoves performs the planned moves in order. Files that landed back in
// their own folder are left untouched.
func ExecuteMoves(ctx context.Context, fsys fsops.FS, rep *status.Reporter, moves []Move) error {
	for _, m := range moves {
		if m.From == m.To {
			continue
		}
		if err := fsys.Move(m.From, m.To); err != nil {
			return errors.Errorf("moving %s: %w", m.From, err)
		}
		rep.Moved(filepath.Base(m.From), filepath.Dir(m.To))
	}
	return nil
}
