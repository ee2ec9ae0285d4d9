// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package thrift

import "fmt"

// TypeID is a Thrift wire type tag. The numeric values are fixed by the
// Thrift Binary Protocol and appear verbatim on the wire in field
// headers and container element declarations.
type TypeID byte

const (
	TypeStop   TypeID = 0
	TypeVoid   TypeID = 1
	TypeBool   TypeID = 2
	TypeByte   TypeID = 3
	TypeDouble TypeID = 4
	TypeI8     TypeID = 5
	TypeI16    TypeID = 6
	TypeI32    TypeID = 8
	TypeU64    TypeID = 9
	TypeI64    TypeID = 10
	TypeBinary TypeID = 11
	TypeStruct TypeID = 12
	TypeMap    TypeID = 13
	TypeSet    TypeID = 14
	TypeList   TypeID = 15
)

// String returns the conventional Thrift name for the tag, or a hex
// rendering for unknown values.
func (t TypeID) String() string {
	switch t {
	case TypeStop:
		return "STOP"
	case TypeVoid:
		return "VOID"
	case TypeBool:
		return "BOOL"
	case TypeByte:
		return "BYTE"
	case TypeDouble:
		return "DOUBLE"
	case TypeI8:
		return "I08"
	case TypeI16:
		return "I16"
	case TypeI32:
		return "I32"
	case TypeU64:
		return "U64"
	case TypeI64:
		return "I64"
	case TypeBinary:
		return "BINARY"
	case TypeStruct:
		return "STRUCT"
	case TypeMap:
		return "MAP"
	case TypeSet:
		return "SET"
	case TypeList:
		return "LIST"
	}
	return fmt.Sprintf("TypeID(0x%02x)", byte(t))
}

// valid reports whether t is a known payload-bearing type tag. STOP is
// not a payload type: it terminates a field list.
func (t TypeID) valid() bool {
	switch t {
	case TypeVoid, TypeBool, TypeByte, TypeDouble, TypeI8, TypeI16,
		TypeI32, TypeU64, TypeI64, TypeBinary, TypeStruct, TypeMap,
		TypeSet, TypeList:
		return true
	}
	return false
}

// MessageType identifies the role of a top-level message.
type MessageType byte

const (
	MessageCall      MessageType = 1
	MessageReply     MessageType = 2
	MessageException MessageType = 3
	MessageOneway    MessageType = 4
)

// String returns the conventional Thrift name for the message type.
func (m MessageType) String() string {
	switch m {
	case MessageCall:
		return "CALL"
	case MessageReply:
		return "REPLY"
	case MessageException:
		return "EXCEPTION"
	case MessageOneway:
		return "ONEWAY"
	}
	return fmt.Sprintf("MessageType(0x%02x)", byte(m))
}

func (m MessageType) valid() bool {
	return m >= MessageCall && m <= MessageOneway
}

// Version identifies the message header variant. The versioned header
// places Version1 in the high 16 bits of the first 32-bit word; the
// legacy header has no version word at all.
type Version uint16

const (
	// VersionNone selects the legacy (unversioned) message header.
	VersionNone Version = 0

	// Version1 selects the versioned message header (0x8001 in the
	// high 16 bits of the first word).
	Version1 Version = 0x8001
)

// Value is one node of a Thrift value tree: a scalar, a byte string,
// or a container. The concrete types are Bool, Byte, I8, I16, I32,
// I64, U64, Double, Binary, Void, *Struct, *Map, *Set, and *List.
type Value interface {
	// TypeID returns the wire tag this value serializes under.
	TypeID() TypeID
}

// Bool is a Thrift bool, one byte on the wire (0x00 or 0x01).
type Bool bool

// Byte is a raw octet, read or written via the BYTE (0x03) wire tag.
// It serializes identically to I8; the two differ only in how the
// value is surfaced in memory.
type Byte byte

// I8 is a signed 8-bit integer, read or written via the I08 (0x05)
// wire tag.
type I8 int8

// I16 is a signed 16-bit integer.
type I16 int16

// I32 is a signed 32-bit integer.
type I32 int32

// I64 is a signed 64-bit integer.
type I64 int64

// U64 is an unsigned 64-bit integer.
type U64 uint64

// Double is an IEEE-754 64-bit float.
type Double float64

// Binary is a length-prefixed opaque byte string.
type Binary []byte

// Void is a value-less placeholder for the VOID type tag. It occupies
// zero bytes on the wire.
type Void struct{}

func (Bool) TypeID() TypeID   { return TypeBool }
func (Byte) TypeID() TypeID   { return TypeByte }
func (I8) TypeID() TypeID     { return TypeI8 }
func (I16) TypeID() TypeID    { return TypeI16 }
func (I32) TypeID() TypeID    { return TypeI32 }
func (I64) TypeID() TypeID    { return TypeI64 }
func (U64) TypeID() TypeID    { return TypeU64 }
func (Double) TypeID() TypeID { return TypeDouble }
func (Binary) TypeID() TypeID { return TypeBinary }
func (Void) TypeID() TypeID   { return TypeVoid }

// Field is one field of a struct. Name is in-memory only; the wire
// carries the type tag and the numeric ID.
type Field struct {
	Name  string
	Type  TypeID
	ID    int16
	Value Value
}

// Struct is an ordered field sequence. Name is in-memory only — the
// Thrift Binary Protocol does not serialize struct names — but is
// load-bearing for the term bridge, which stores its sentinel
// discriminators there.
type Struct struct {
	Name   string
	Fields []Field
}

func (*Struct) TypeID() TypeID { return TypeStruct }

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is an ordered sequence of key/value entries with declared key
// and value type tags. Every key must conform to KeyType and every
// value to ValueType.
type Map struct {
	KeyType   TypeID
	ValueType TypeID
	Entries   []MapEntry
}

func (*Map) TypeID() TypeID { return TypeMap }

// Set is an ordered element sequence with a declared element type.
// The codec does not deduplicate: set semantics are the caller's
// concern.
type Set struct {
	ElemType TypeID
	Elements []Value
}

func (*Set) TypeID() TypeID { return TypeSet }

// List is an ordered element sequence with a declared element type.
type List struct {
	ElemType TypeID
	Elements []Value
}

func (*List) TypeID() TypeID { return TypeList }

// Message is a complete top-level Thrift message.
type Message struct {
	Name    string
	Type    MessageType
	SeqID   int32
	Payload Struct
}

// tagsCompatible reports whether a value carrying tag have may appear
// where tag want is declared. BYTE and I08 are interchangeable: both
// serialize as a single signed byte.
func tagsCompatible(want, have TypeID) bool {
	if want == have {
		return true
	}
	return (want == TypeByte || want == TypeI8) &&
		(have == TypeByte || have == TypeI8)
}
