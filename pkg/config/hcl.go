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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema. Optional attributes are pointers so absent values
	// keep the built-in defaults.
	type hclConfig struct {
		FolderTemplate  *string  `hcl:"folder_template,optional"`
		TracksPerFolder *int     `hcl:"tracks_per_folder,optional"`
		RewriteNames    *bool    `hcl:"rewrite_names,optional"`
		Shuffle         *bool    `hcl:"shuffle,optional"`
		Reshuffle       *bool    `hcl:"reshuffle,optional"`
		Quiet           *bool    `hcl:"quiet,optional"`
		Extensions      []string `hcl:"extensions,optional"`
		IgnorePatterns  []string `hcl:"ignore_patterns,optional"`
		GroupBy         *string  `hcl:"group_by,optional"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := Default()
	if hclCfg.FolderTemplate != nil {
		cfg.FolderTemplate = *hclCfg.FolderTemplate
	}
	if hclCfg.TracksPerFolder != nil {
		cfg.TracksPerFolder = *hclCfg.TracksPerFolder
	}
	if hclCfg.RewriteNames != nil {
		cfg.RewriteNames = *hclCfg.RewriteNames
	}
	if hclCfg.Shuffle != nil {
		cfg.Shuffle = *hclCfg.Shuffle
	}
	if hclCfg.Reshuffle != nil {
		cfg.Reshuffle = *hclCfg.Reshuffle
	}
	if hclCfg.Quiet != nil {
		cfg.Quiet = *hclCfg.Quiet
	}
	if len(hclCfg.Extensions) > 0 {
		cfg.Extensions = hclCfg.Extensions
	}
	if len(hclCfg.IgnorePatterns) > 0 {
		cfg.IgnorePatterns = hclCfg.IgnorePatterns
	}
	if hclCfg.GroupBy != nil {
		cfg.GroupBy = *hclCfg.GroupBy
	}

	return cfg, nil
}
