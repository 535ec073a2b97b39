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

package config

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// GroupBy selectors accepted by the stats command.
const (
	GroupByArtist = "artist"
	GroupByTrack  = "track"
)

// DefaultFolderTemplate matches the numbered-folder convention of
// folder-limited car stereos.
const DefaultFolderTemplate = "Folder %d"

// 📚 Config represents the complete configuration of a run. Destination and
// Playlists always come from the command line; the rest may be defaulted from
// a config file and overridden by flags.
type Config struct {
	Destination     string   `json:"-" yaml:"-"`
	Playlists       []string `json:"-" yaml:"-"`
	FolderTemplate  string   `json:"folder_template,omitempty" yaml:"folder_template,omitempty"`
	TracksPerFolder int      `json:"tracks_per_folder,omitempty" yaml:"tracks_per_folder,omitempty"`
	RewriteNames    bool     `json:"rewrite_names,omitempty" yaml:"rewrite_names,omitempty"`
	Shuffle         bool     `json:"shuffle,omitempty" yaml:"shuffle,omitempty"`
	Reshuffle       bool     `json:"reshuffle,omitempty" yaml:"reshuffle,omitempty"`
	DryRun          bool     `json:"-" yaml:"-"`
	Quiet           bool     `json:"quiet,omitempty" yaml:"quiet,omitempty"`
	Extensions      []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	IgnorePatterns  []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"`
	GroupBy         string   `json:"group_by,omitempty" yaml:"group_by,omitempty"`
}

// 🎯 Default returns the built-in defaults: a single unbounded folder and the
// track formats the original target devices support.
func Default() *Config {
	return &Config{
		FolderTemplate: DefaultFolderTemplate,
		Extensions:     []string{".mp3", ".m4a", ".wav"},
		GroupBy:        GroupByArtist,
	}
}

// 🎯 Load loads the configuration from a file. An empty path means "use the
// first .playsync.{yaml,yml,hcl} found in the working directory, or plain
// defaults when none exists". An explicit path must exist.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		for _, candidate := range []string{".playsync.yaml", ".playsync.yml", ".playsync.hcl"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			logger.Debug().Msg("no config file found, using defaults")
			return Default(), nil
		}
	}

	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ✅ Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if err := ValidateTemplate(c.FolderTemplate); err != nil {
		return err
	}
	if c.TracksPerFolder < 0 {
		return errors.Errorf("tracks_per_folder must be >= 0, got %d", c.TracksPerFolder)
	}
	if c.GroupBy != GroupByArtist && c.GroupBy != GroupByTrack {
		return errors.Errorf("group_by must be %q or %q, got %q", GroupByArtist, GroupByTrack, c.GroupBy)
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	return nil
}

// ValidateTemplate checks that the folder-name template carries exactly one
// integer placeholder and nothing else the formatter would interpret.
func ValidateTemplate(template string) error {
	rest := strings.ReplaceAll(template, "%%", "")
	if strings.Count(rest, "%d") != 1 {
		return errors.Errorf("folder template %q must contain exactly one %%d placeholder", template)
	}
	if strings.Count(rest, "%") != 1 {
		return errors.Errorf("folder template %q must not contain format verbs other than %%d", template)
	}
	return nil
}
