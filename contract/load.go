// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// File is the on-disk registry format. Files are authored as JSONC
// (JSON extended with comments and trailing commas) or YAML, selected
// by extension:
//
//	{
//	    // record schemas, keyed implicitly by (name, field count)
//	    "records": [
//	        {"name": "point", "fields": ["x", "y"]},
//	    ],
//	    // atom names preloaded for safe-mode decoding
//	    "atoms": ["ok", "error"],
//	}
type File struct {
	Records []Declaration `json:"records" yaml:"records"`
	Atoms   []string      `json:"atoms"   yaml:"atoms"`
}

// Load reads a registry file from disk. It returns the registry and
// the atom preload list. The format is chosen by extension: .yaml and
// .yml parse as YAML, everything else as JSONC.
func Load(path string) (*Static, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file File
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, nil, fmt.Errorf("%s: parsing YAML: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
			return nil, nil, fmt.Errorf("%s: parsing JSONC: %w", path, err)
		}
	}

	registry, err := NewStatic(file.Records...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return registry, file.Atoms, nil
}
