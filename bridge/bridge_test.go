// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"testing"

	"github.com/hibari/ubf-thrift/contract"
	"github.com/hibari/ubf-thrift/term"
	"github.com/hibari/ubf-thrift/thrift"
)

func testRegistry(t *testing.T) *contract.Static {
	t.Helper()
	registry, err := contract.NewStatic(
		contract.Declaration{Name: "point", Fields: []string{"x", "y"}},
		contract.Declaration{Name: "person", Fields: []string{"name", "age", "tags"}},
	)
	if err != nil {
		t.Fatalf("NewStatic: %v", err)
	}
	return registry
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	bridge := &Bridge{
		Registry: testRegistry(t),
		Atoms:    term.NewAtomTable("ok", "point", "person"),
	}

	tests := []struct {
		name string
		t    term.Term
	}{
		{name: "binary", t: term.Binary("raw bytes")},
		{name: "empty binary", t: term.Binary{}},
		{name: "integer", t: term.Integer(-42)},
		{name: "float", t: term.Float(2.5)},
		{name: "bool true", t: term.Bool(true)},
		{name: "bool false", t: term.Bool(false)},
		{name: "atom", t: term.Atom("ok")},
		{name: "string", t: term.String("héllo")},
		{name: "empty list", t: term.List{}},
		{name: "list", t: term.List{term.Integer(1), term.Atom("ok"), term.String("x")}},
		{name: "tuple", t: term.Tuple{term.Bool(true), term.Binary("b")}},
		{name: "nested sequences", t: term.List{term.Tuple{term.List{term.Integer(9)}}}},
		{
			name: "proplist",
			t: term.PropList{
				{Key: term.Atom("ok"), Value: term.Integer(1)},
				{Key: term.String("k"), Value: term.List{term.Float(1.5)}},
			},
		},
		{name: "record", t: term.Record{Name: "point", Fields: []term.Term{term.Integer(3), term.Integer(4)}}},
		{
			name: "nested record",
			t: term.Record{Name: "person", Fields: []term.Term{
				term.String("alice"),
				term.Integer(30),
				term.List{term.Atom("ok")},
			}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			encoded, err := bridge.Encode(test.t)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			decoded, err := bridge.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !term.Equal(decoded, test.t) {
				t.Errorf("round trip: got %#v, want %#v", decoded, test.t)
			}
		})
	}
}

func TestEncodeAtomShape(t *testing.T) {
	t.Parallel()
	bridge := &Bridge{}

	encoded, err := bridge.Encode(term.Atom("ok"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded.Name != SentinelAtom {
		t.Errorf("name: got %q, want %q", encoded.Name, SentinelAtom)
	}
	if len(encoded.Fields) != 1 {
		t.Fatalf("fields: got %d, want 1", len(encoded.Fields))
	}
	field := encoded.Fields[0]
	if field.ID != 1 || field.Type != thrift.TypeBinary {
		t.Errorf("field: got id=%d type=%v, want id=1 type=BINARY", field.ID, field.Type)
	}
	if got := field.Value.(thrift.Binary); string(got) != "ok" {
		t.Errorf("content: got %q, want ok", got)
	}
}

func TestDecodeAtomSafeMode(t *testing.T) {
	t.Parallel()
	atoms := term.NewAtomTable("ok")
	safe := &Bridge{Atoms: atoms, Safe: true}

	encoded, err := safe.Encode(term.Atom("ok"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := safe.Decode(encoded); err != nil {
		t.Errorf("known atom in safe mode: %v", err)
	}

	unknown, err := safe.Encode(term.Atom("mystery"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = safe.Decode(unknown)
	var bridgeErr *Error
	if !errors.As(err, &bridgeErr) || bridgeErr.Reason != "unknown-atom" {
		t.Errorf("unknown atom in safe mode: got %v, want unknown-atom", err)
	}

	// The same envelope decodes outside safe mode, and the name is
	// interned as a side effect.
	permissive := &Bridge{Atoms: atoms}
	decoded, err := permissive.Decode(unknown)
	if err != nil {
		t.Fatalf("Decode outside safe mode: %v", err)
	}
	if decoded != term.Atom("mystery") {
		t.Errorf("got %v, want mystery", decoded)
	}
	if _, known := atoms.Lookup("mystery"); !known {
		t.Error("decoded atom was not interned")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()
	bridge := &Bridge{Registry: testRegistry(t), Atoms: term.NewAtomTable("point")}
	record := term.Record{Name: "point", Fields: []term.Term{term.Integer(3), term.Integer(4)}}

	encoded, err := bridge.Encode(record)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded.Name != SentinelRecord {
		t.Fatalf("name: got %q, want $R", encoded.Name)
	}
	entries := encoded.Fields[0].Value.(*thrift.Map)
	if entries.KeyType != thrift.TypeBinary || entries.ValueType != thrift.TypeStruct {
		t.Errorf("map types: got %v->%v", entries.KeyType, entries.ValueType)
	}
	if len(entries.Entries) != 3 {
		t.Errorf("entries: got %d, want 3 (name + two fields)", len(entries.Entries))
	}
	if string(entries.Entries[0].Key.(thrift.Binary)) != "" {
		t.Error("first entry is not the reserved record-name entry")
	}

	decoded, err := bridge.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !term.Equal(decoded, record) {
		t.Errorf("round trip: got %#v, want %#v", decoded, record)
	}
}

func TestRecordTupleFallback(t *testing.T) {
	t.Parallel()
	// No schema for (edge, 2): the record encodes as its tuple form.
	bridge := &Bridge{Registry: testRegistry(t), Atoms: term.NewAtomTable("edge")}
	record := term.Record{Name: "edge", Fields: []term.Term{term.Integer(1), term.Integer(2)}}

	encoded, err := bridge.Encode(record)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded.Name != SentinelTuple {
		t.Fatalf("name: got %q, want $T fallback", encoded.Name)
	}

	decoded, err := bridge.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := term.Tuple{term.Atom("edge"), term.Integer(1), term.Integer(2)}
	if !term.Equal(decoded, want) {
		t.Errorf("fallback: got %#v, want %#v", decoded, want)
	}
}

func TestDecodeShapeErrors(t *testing.T) {
	t.Parallel()
	registry := testRegistry(t)
	atoms := term.NewAtomTable("ok", "point")

	tests := []struct {
		name       string
		s          *thrift.Struct
		wantReason string
	}{
		{
			name:       "not a sentinel",
			s:          &thrift.Struct{Name: "Plain", Fields: []thrift.Field{}},
			wantReason: "not-sentinel",
		},
		{
			name:       "wrong field count",
			s:          &thrift.Struct{Name: SentinelBinary},
			wantReason: "field-count",
		},
		{
			name: "wrong field id",
			s: &thrift.Struct{Name: SentinelBinary, Fields: []thrift.Field{
				{Type: thrift.TypeBinary, ID: 2, Value: thrift.Binary("x")},
			}},
			wantReason: "field-id",
		},
		{
			name: "wrong field type",
			s: &thrift.Struct{Name: SentinelBinary, Fields: []thrift.Field{
				{Type: thrift.TypeI32, ID: 1, Value: thrift.I32(1)},
			}},
			wantReason: "field-type",
		},
		{
			name: "number with non-numeric field",
			s: &thrift.Struct{Name: SentinelNumber, Fields: []thrift.Field{
				{Type: thrift.TypeBinary, ID: 1, Value: thrift.Binary("x")},
			}},
			wantReason: "field-type",
		},
		{
			name: "list with non-struct element tag",
			s: &thrift.Struct{Name: SentinelList, Fields: []thrift.Field{
				{Type: thrift.TypeList, ID: 1, Value: &thrift.List{
					ElemType: thrift.TypeI32,
					Elements: []thrift.Value{thrift.I32(1)},
				}},
			}},
			wantReason: "elem-type",
		},
		{
			name: "proplist with binary keys",
			s: &thrift.Struct{Name: SentinelPropList, Fields: []thrift.Field{
				{Type: thrift.TypeMap, ID: 1, Value: &thrift.Map{
					KeyType:   thrift.TypeBinary,
					ValueType: thrift.TypeStruct,
				}},
			}},
			wantReason: "key-type",
		},
		{
			name: "record without reserved name entry",
			s: &thrift.Struct{Name: SentinelRecord, Fields: []thrift.Field{
				{Type: thrift.TypeMap, ID: 1, Value: &thrift.Map{
					KeyType:   thrift.TypeBinary,
					ValueType: thrift.TypeStruct,
					Entries: []thrift.MapEntry{
						{Key: thrift.Binary("x"), Value: mustEncode(t, term.Integer(3))},
					},
				}},
			}},
			wantReason: "missing-record-name",
		},
		{
			name: "record with unknown schema",
			s: &thrift.Struct{Name: SentinelRecord, Fields: []thrift.Field{
				{Type: thrift.TypeMap, ID: 1, Value: &thrift.Map{
					KeyType:   thrift.TypeBinary,
					ValueType: thrift.TypeStruct,
					Entries: []thrift.MapEntry{
						{Key: thrift.Binary(""), Value: mustEncode(t, term.Atom("ok"))},
						{Key: thrift.Binary("x"), Value: mustEncode(t, term.Integer(3))},
					},
				}},
			}},
			wantReason: "unknown-record",
		},
		{
			name: "record field not in schema",
			s: &thrift.Struct{Name: SentinelRecord, Fields: []thrift.Field{
				{Type: thrift.TypeMap, ID: 1, Value: &thrift.Map{
					KeyType:   thrift.TypeBinary,
					ValueType: thrift.TypeStruct,
					Entries: []thrift.MapEntry{
						{Key: thrift.Binary(""), Value: mustEncode(t, term.Atom("point"))},
						{Key: thrift.Binary("x"), Value: mustEncode(t, term.Integer(3))},
						{Key: thrift.Binary("z"), Value: mustEncode(t, term.Integer(4))},
					},
				}},
			}},
			wantReason: "unknown-field",
		},
		{
			name: "record with duplicate field",
			s: &thrift.Struct{Name: SentinelRecord, Fields: []thrift.Field{
				{Type: thrift.TypeMap, ID: 1, Value: &thrift.Map{
					KeyType:   thrift.TypeBinary,
					ValueType: thrift.TypeStruct,
					Entries: []thrift.MapEntry{
						{Key: thrift.Binary(""), Value: mustEncode(t, term.Atom("point"))},
						{Key: thrift.Binary("x"), Value: mustEncode(t, term.Integer(3))},
						{Key: thrift.Binary("x"), Value: mustEncode(t, term.Integer(4))},
					},
				}},
			}},
			wantReason: "duplicate-field",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			bridge := &Bridge{Registry: registry, Atoms: atoms}
			_, err := bridge.Decode(test.s)
			var bridgeErr *Error
			if !errors.As(err, &bridgeErr) {
				t.Fatalf("got %v, want *Error", err)
			}
			if bridgeErr.Reason != test.wantReason {
				t.Errorf("reason: got %q, want %q", bridgeErr.Reason, test.wantReason)
			}
		})
	}
}

// mustEncode encodes a term with a throwaway bridge for fixture
// construction.
func mustEncode(t *testing.T, value term.Term) *thrift.Struct {
	t.Helper()
	encoded, err := (&Bridge{}).Encode(value)
	if err != nil {
		t.Fatalf("encoding fixture %v: %v", value, err)
	}
	return encoded
}
