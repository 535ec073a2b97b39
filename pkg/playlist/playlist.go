// Package playlist reads M3U/M3U8 track lists into ordered absolute paths.
package playlist

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/walteh/playsync/pkg/fsops"
	"github.com/walteh/playsync/pkg/status"
)

// Parse reads one playlist and returns the ordered absolute paths of its
// tracks. Directive lines (leading '#') and blanks are skipped. Relative lines
// resolve against the playlist's own directory. Lines naming a missing file
// warn; lines with an extension outside exts are reported as skipped. Neither
// aborts the run.
func Parse(ctx context.Context, fsys fsops.FS, rep *status.Reporter, path string, exts []string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading playlist %s: %w", path, err)
	}

	text, err := decode(raw)
	if err != nil {
		return nil, errors.Errorf("decoding playlist %s: %w", path, err)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Errorf("resolving playlist directory: %w", err)
	}

	patterns := make([]string, 0, len(exts))
	for _, ext := range exts {
		patterns = append(patterns, "*"+strings.ToLower(ext))
	}

	var tracks []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		src := filepath.FromSlash(line)
		if !filepath.IsAbs(src) {
			src = filepath.Join(base, src)
		}
		src = filepath.Clean(src)

		if !fsys.IsFile(src) {
			rep.Warnf("playlist %s references missing file %s, skipping", filepath.Base(path), line)
			continue
		}
		if !matchesAny(patterns, filepath.Base(src)) {
			rep.Skipped(filepath.Base(src), "unsupported file type")
			continue
		}

		tracks = append(tracks, src)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("scanning playlist %s: %w", path, err)
	}

	logger.Debug().Str("playlist", path).Int("tracks", len(tracks)).Msg("parsed playlist")
	return tracks, nil
}

func matchesAny(patterns []string, name string) bool {
	name = strings.ToLower(name)
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// decode handles the encodings M3U files show up in: UTF-8 (with or without
// BOM), UTF-16 with BOM (M3U8 exports from Windows players), and a
// Windows-1252 fallback for legacy byte soup.
func decode(raw []byte) (string, error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return string(raw[3:]), nil
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}), bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return "", errors.Errorf("decoding UTF-16: %w", err)
		}
		return string(out), nil
	case utf8.Valid(raw):
		return string(raw), nil
	default:
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
		if err != nil {
			return "", errors.Errorf("decoding Windows-1252: %w", err)
		}
		return string(out), nil
	}
}
