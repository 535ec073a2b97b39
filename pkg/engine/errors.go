package engine

import "gitlab.com/tozd/go/errors"

// Fatal failure classes. Each aborts the whole run before (or instead of) the
// mutation it guards; none is ever skipped over per-file.
var (
	// ErrMissingMetadata: filename rewriting needs artist, album and title,
	// and a renamed-but-mistagged file would silently corrupt the diff.
	ErrMissingMetadata = errors.Base("missing metadata")

	// ErrDuplicateName: computed or destination filenames are not unique
	// under case folding, so set-difference by name is meaningless.
	ErrDuplicateName = errors.Base("duplicate filename")

	// ErrFoldersFull: a reshuffle found no folder with a free slot left.
	ErrFoldersFull = errors.Base("all folders are full")

	// ErrNameCollision: a reshuffle move target already exists on disk.
	ErrNameCollision = errors.Base("destination name collision")
)
