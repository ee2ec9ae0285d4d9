// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

// Package contract provides the contract registry: the read-only
// lookup service mapping (record name, arity) to the ordered list of
// field names. The term bridge consults it when encoding a Record (to
// order the field map) and when decoding a $R envelope (to validate
// shape and arity).
//
// Registries are read-mostly and must support concurrent readers. The
// Static implementation is immutable after construction; declarations
// can be authored in code or loaded from JSONC or YAML files (see
// Load).
package contract

import (
	"fmt"
	"sort"
)

// RecordID identifies a record schema: records with the same name but
// different arities are distinct.
type RecordID struct {
	Name  string
	Arity int
}

// Registry is the narrow lookup interface the codec consults. A nil
// or empty registry is valid: every record encode then takes the
// tuple fallback and every record decode fails.
type Registry interface {
	// Records returns the set of declared record schemas.
	Records() []RecordID

	// RecordFields returns the ordered field names for (name, arity),
	// or false if no such schema is declared.
	RecordFields(name string, arity int) ([]string, bool)
}

// Compile-time interface check.
var _ Registry = (*Static)(nil)

// Static is an immutable Registry built from Declaration entries. Safe
// for concurrent readers.
type Static struct {
	fields map[RecordID][]string
}

// Declaration is one record schema for NewStatic. The struct tags
// serve the file loader (see Load); in-code construction ignores them.
type Declaration struct {
	Name   string   `json:"name"   yaml:"name"`
	Fields []string `json:"fields" yaml:"fields"`
}

// NewStatic builds a registry from declarations. Declaring the same
// (name, arity) twice is an error; the arity is the field count.
func NewStatic(declarations ...Declaration) (*Static, error) {
	registry := &Static{fields: make(map[RecordID][]string, len(declarations))}
	for _, declaration := range declarations {
		if declaration.Name == "" {
			return nil, fmt.Errorf("contract: record with empty name")
		}
		id := RecordID{Name: declaration.Name, Arity: len(declaration.Fields)}
		if _, exists := registry.fields[id]; exists {
			return nil, fmt.Errorf("contract: duplicate record %s/%d", id.Name, id.Arity)
		}
		seen := make(map[string]struct{}, len(declaration.Fields))
		for _, field := range declaration.Fields {
			if field == "" {
				return nil, fmt.Errorf("contract: record %s has an empty field name", declaration.Name)
			}
			if _, duplicate := seen[field]; duplicate {
				return nil, fmt.Errorf("contract: record %s declares field %q twice", declaration.Name, field)
			}
			seen[field] = struct{}{}
		}
		registry.fields[id] = append([]string(nil), declaration.Fields...)
	}
	return registry, nil
}

// Records returns the declared schemas, sorted by name then arity.
func (s *Static) Records() []RecordID {
	ids := make([]RecordID, 0, len(s.fields))
	for id := range s.fields {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Name != ids[j].Name {
			return ids[i].Name < ids[j].Name
		}
		return ids[i].Arity < ids[j].Arity
	})
	return ids
}

// RecordFields returns the ordered field names for (name, arity).
func (s *Static) RecordFields(name string, arity int) ([]string, bool) {
	fields, ok := s.fields[RecordID{Name: name, Arity: arity}]
	return fields, ok
}
