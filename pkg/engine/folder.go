package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/pkg/fsops"
)

// FormatFolder renders the folder name for number n. The template is
// validated at config time to hold exactly one %d.
func FormatFolder(template string, n int) string {
	return fmt.Sprintf(template, n)
}

// ParseFolder recovers the folder number from a directory name, by
// substituting at the placeholder position rather than general pattern
// matching. The parsed value must format back to the exact same name, so
// zero-padded or signed variants like "Folder 01" are rejected; without that,
// two directories could map to the same number and corrupt occupancy counts.
// Names not fitting the template return ok=false and are ignored entirely by
// the engine.
func ParseFolder(template, name string) (int, bool) {
	idx := strings.Index(template, "%d")
	if idx < 0 {
		return 0, false
	}
	prefix, suffix := template[:idx], template[idx+2:]

	if len(name) <= len(prefix)+len(suffix) {
		return 0, false
	}
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return 0, false
	}

	mid := name[len(prefix) : len(name)-len(suffix)]
	n, err := strconv.Atoi(mid)
	if err != nil || n < 1 {
		return 0, false
	}
	if FormatFolder(template, n) != name {
		return 0, false
	}
	return n, true
}

// DestFile is one file currently present in the destination.
type DestFile struct {
	Name   string // basename
	Path   string // absolute path
	Folder int    // folder number it lives in
	Size   int64
}

// FolderIndex is the engine's view of the destination: folder number →
// occupancy, plus the flat ordered file list. It is rebuilt from disk at the
// start of every run and owned by a single orchestration for its duration.
type FolderIndex struct {
	Root     string
	Template string
	Flat     bool // single-folder mode, files live in Root
	Folders  map[int]int
	Files    []DestFile
}

// ScanDest builds the FolderIndex. In flat mode the destination root itself
// is folder 1 and subdirectories are not entered. Otherwise only directories
// matching the template are indexed, only regular files inside them count,
// and loose files in the root are left alone. Entries matching an ignore
// pattern are excluded from the index (and therefore never deleted or moved).
func ScanDest(ctx context.Context, fsys fsops.FS, root, template string, flat bool, ignore []string) (*FolderIndex, error) {
	logger := zerolog.Ctx(ctx)

	ix := &FolderIndex{
		Root:     root,
		Template: template,
		Flat:     flat,
		Folders:  make(map[int]int),
	}

	entries, err := fsys.ListDir(root)
	if err != nil {
		return nil, errors.Errorf("scanning destination: %w", err)
	}

	if flat {
		ix.Folders[1] = 0
		for _, e := range entries {
			if e.IsDir || ignored(ignore, e.Name) {
				continue
			}
			ix.addFile(e, filepath.Join(root, e.Name), 1)
		}
		logger.Debug().Int("files", len(ix.Files)).Msg("scanned flat destination")
		return ix, nil
	}

	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		number, ok := ParseFolder(template, e.Name)
		if !ok {
			continue
		}
		ix.Folders[number] = 0

		sub := filepath.Join(root, e.Name)
		subEntries, err := fsys.ListDir(sub)
		if err != nil {
			return nil, errors.Errorf("scanning folder %s: %w", sub, err)
		}
		for _, se := range subEntries {
			if se.IsDir || ignored(ignore, se.Name) {
				continue
			}
			ix.addFile(se, filepath.Join(sub, se.Name), number)
		}
	}

	logger.Debug().
		Int("folders", len(ix.Folders)).
		Int("files", len(ix.Files)).
		Msg("scanned destination")
	return ix, nil
}

func (ix *FolderIndex) addFile(e fsops.Entry, path string, folder int) {
	ix.Files = append(ix.Files, DestFile{Name: e.Name, Path: path, Folder: folder, Size: e.Size})
	ix.Folders[folder]++
}

// FolderPath returns the directory files of folder n live in.
func (ix *FolderIndex) FolderPath(n int) string {
	if ix.Flat {
		return ix.Root
	}
	return filepath.Join(ix.Root, FormatFolder(ix.Template, n))
}

// TotalFiles returns the file count across all folders.
func (ix *FolderIndex) TotalFiles() int {
	return len(ix.Files)
}

// Decrement lowers the occupancy of folder n, guarding against going below
// zero, and reports whether this decrement emptied the folder.
func (ix *FolderIndex) Decrement(n int) bool {
	count, ok := ix.Folders[n]
	if !ok || count == 0 {
		return false
	}
	ix.Folders[n] = count - 1
	return count == 1
}

// DropFolder forgets folder n after its directory was removed.
func (ix *FolderIndex) DropFolder(n int) {
	delete(ix.Folders, n)
}

func ignored(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
