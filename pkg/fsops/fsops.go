// Package fsops provides the file-system capability interface used by the
// sync engine, plus the real OS-backed implementation and a dry-run decorator.
package fsops

import (
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

// 📄 Entry describes a single directory entry
type Entry struct {
	Name  string
	IsDir bool
	Size  int64
}

// 💾 FS is the set of file-system operations the engine is allowed to perform.
// Everything that mutates the destination goes through here so that dry runs
// can suppress it uniformly.
type FS interface {
	// ListDir returns the entries of a directory in lexical order
	ListDir(path string) ([]Entry, error)
	// IsFile reports whether path exists and is a regular file
	IsFile(path string) bool
	// ReadFile returns the contents of a regular file
	ReadFile(path string) ([]byte, error)
	// Exists reports whether path exists at all
	Exists(path string) (bool, error)
	// Copy copies a regular file, creating or truncating the target
	Copy(src, dst string) error
	// Move renames a file
	Move(src, dst string) error
	// Delete removes a single file
	Delete(path string) error
	// MkDir creates a single directory
	MkDir(path string) error
	// RemoveDir removes a single (empty) directory
	RemoveDir(path string) error
}

// 🏭 NewOS returns the real, os-backed implementation
func NewOS() FS {
	return &osFS{}
}

type osFS struct{}

func (f *osFS) ListDir(path string) ([]Entry, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		e := Entry{Name: d.Name(), IsDir: d.IsDir()}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				e.Size = info.Size()
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (f *osFS) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (f *osFS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (f *osFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("statting %s: %w", path, err)
}

func (f *osFS) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return errors.Errorf("closing %s: %w", dst, err)
	}
	return nil
}

func (f *osFS) Move(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return errors.Errorf("moving %s to %s: %w", src, dst, err)
	}
	return nil
}

func (f *osFS) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return errors.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

func (f *osFS) MkDir(path string) error {
	if err := os.Mkdir(path, 0o755); err != nil {
		return errors.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}

func (f *osFS) RemoveDir(path string) error {
	if err := os.Remove(path); err != nil {
		return errors.Errorf("removing directory %s: %w", path, err)
	}
	return nil
}

// TODO(dr.methodical): ⚡ preserve source mtimes in Copy so devices that sort by date keep playlist order
