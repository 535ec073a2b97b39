package engine

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Track is one conceptual file moving from a playlist to the destination.
// DestName is fixed once computed; DestPath and Folder are assigned by
// allocation.
type Track struct {
	Source   string
	DestName string
	DestPath string
	Folder   int
}

// Diff partitions tracks and the destination's current files into additions
// (computed name absent from the destination) and deletions (destination file
// absent from the computed set). Identity is the case-folded filename.
// Additions preserve playlist order and are keyed by track index; deletions
// are keyed by position in the destination listing. Diff is pure.
//
// Preconditions, checked before anything mutates: computed names must be
// unique (a Namer bug otherwise) and destination basenames must be unique
// across all folders combined (the tool cannot disambiguate two folders
// holding the same name).
func Diff(tracks []*Track, ix *FolderIndex) (additions []int, deletions []int, err error) {
	playlistSet := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		key := strings.ToLower(t.DestName)
		if _, dup := playlistSet[key]; dup {
			return nil, nil, errors.Errorf("%w: computed name %q appears twice", ErrDuplicateName, t.DestName)
		}
		playlistSet[key] = struct{}{}
	}

	destSet := make(map[string]struct{}, len(ix.Files))
	for _, f := range ix.Files {
		key := strings.ToLower(f.Name)
		if _, dup := destSet[key]; dup {
			return nil, nil, errors.Errorf("%w: destination holds %q more than once across folders", ErrDuplicateName, f.Name)
		}
		destSet[key] = struct{}{}
	}

	for i, t := range tracks {
		if _, exists := destSet[strings.ToLower(t.DestName)]; !exists {
			additions = append(additions, i)
		}
	}
	for j, f := range ix.Files {
		if _, wanted := playlistSet[strings.ToLower(f.Name)]; !wanted {
			deletions = append(deletions, j)
		}
	}
	return additions, deletions, nil
}
