package engine

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/playsync/pkg/metadata"
)

// Characters allowed in a rewritten filename: word characters (unicode
// letters, digits, underscore), whitespace, parentheses, hyphen, period,
// apostrophe. Everything else is stripped.
var stripPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s().'\-]`)

// Namer computes unique destination filenames for one run. Uniqueness is
// case-insensitive and spans every name registered so far, so repeated runs
// over the same ordered input always produce the same names.
type Namer struct {
	ordered []string
	taken   map[string]struct{}
}

func NewNamer() *Namer {
	return &Namer{taken: make(map[string]struct{})}
}

// DestName derives the destination filename for source. With rewrite off the
// original basename is kept; with rewrite on the name is composed from tags,
// which must be complete. Either way the result gets a " (n)" suffix if the
// case-folded candidate is already registered, and is then registered itself.
func (n *Namer) DestName(source string, tags metadata.Tags, rewrite bool) (string, error) {
	ext := filepath.Ext(source)
	var base string
	if rewrite {
		if !tags.Complete() {
			return "", errors.Errorf("%w: %s needs artist, album and title to rewrite its name", ErrMissingMetadata, source)
		}
		base = fmt.Sprintf("%s - %s - %s", tags.Artist, tags.Album, tags.Title)
		base = strings.TrimSpace(stripPattern.ReplaceAllString(base, ""))
	} else {
		base = strings.TrimSuffix(filepath.Base(source), ext)
	}

	for nth := 1; ; nth++ {
		suffix := ""
		if nth > 1 {
			suffix = fmt.Sprintf(" (%d)", nth)
		}
		candidate := base + suffix + ext
		key := strings.ToLower(candidate)
		if _, exists := n.taken[key]; !exists {
			n.taken[key] = struct{}{}
			n.ordered = append(n.ordered, candidate)
			return candidate, nil
		}
	}
}

// Names returns every name registered so far, in registration order.
func (n *Namer) Names() []string {
	out := make([]string, len(n.ordered))
	copy(out, n.ordered)
	return out
}
