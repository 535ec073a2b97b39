// Package metadata exposes embedded audio tags as a fixed-shape capability
// interface so the engine never touches a tag-decoding library directly.
package metadata

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
	"gitlab.com/tozd/go/errors"
)

// Tags holds the three fields the filename rewriter needs.
type Tags struct {
	Artist string
	Album  string
	Title  string
}

// Complete reports whether every field carries a usable value. Whitespace-only
// values count as missing.
func (t Tags) Complete() bool {
	return strings.TrimSpace(t.Artist) != "" &&
		strings.TrimSpace(t.Album) != "" &&
		strings.TrimSpace(t.Title) != ""
}

// Reader reads tags from an audio file. An undecodable or untagged file yields
// zero Tags and a nil error; only I/O failures are errors.
type Reader interface {
	ReadTags(path string) (Tags, error)
}

// 🏭 NewFileReader returns the dhowden/tag backed Reader. It understands
// ID3v1/v2, MP4 atoms and FLAC comments, which covers the supported
// .mp3/.m4a/.wav inputs.
func NewFileReader() Reader {
	return &fileReader{}
}

type fileReader struct{}

func (r *fileReader) ReadTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// No recognizable tag block. The caller decides whether that is
		// fatal, so it is not an error at this layer.
		return Tags{}, nil
	}

	return Tags{
		Artist: m.Artist(),
		Album:  m.Album(),
		Title:  m.Title(),
	}, nil
}
