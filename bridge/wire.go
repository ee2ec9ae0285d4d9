// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"github.com/hibari/ubf-thrift/term"
	"github.com/hibari/ubf-thrift/thrift"
)

// DecodeWire maps a term envelope that crossed the wire — and so lost
// its sentinel struct name — back to a term, reconstructing the
// variant from the envelope shape. Trees that still carry sentinel
// names take the exact path instead.
//
// Shape recovers numbers, booleans, proplists, and records exactly.
// The remaining envelopes are wire-ambiguous and resolve to the wider
// variant: a BINARY field becomes Binary (whether the sender wrote
// Binary, Atom, or String), a LIST field becomes List (whether List or
// Tuple). A record's name arrives through the reserved map entry, so
// it survives; the safe-mode atom gate still applies to it.
func (b *Bridge) DecodeWire(s *thrift.Struct) (term.Term, error) {
	if s.Name != "" {
		return b.Decode(s)
	}
	if len(s.Fields) != 1 {
		return nil, &Error{Reason: "field-count", Value: len(s.Fields)}
	}
	field := s.Fields[0]
	if field.ID != 1 {
		return nil, &Error{Reason: "field-id", Value: field.ID}
	}

	switch value := field.Value.(type) {
	case thrift.Binary:
		return term.Binary(value), nil
	case thrift.I64:
		return term.Integer(value), nil
	case thrift.Double:
		return term.Float(value), nil
	case thrift.Bool:
		return term.Bool(value), nil
	case *thrift.List:
		elements, err := b.decodeSequence(s, b.DecodeWire)
		if err != nil {
			return nil, err
		}
		return term.List(elements), nil
	case *thrift.Map:
		switch value.KeyType {
		case thrift.TypeStruct:
			return b.decodePropList(s, b.DecodeWire)
		case thrift.TypeBinary:
			return b.decodeRecord(s, b.DecodeWire)
		}
		return nil, &Error{Reason: "key-type", Value: value.KeyType}
	}
	return nil, &Error{Reason: "field-type", Value: field.Type}
}
