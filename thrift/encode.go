// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package thrift

import (
	"fmt"
	"math"
	"net"
)

// binaryInlineLimit is the size below which a Binary payload is copied
// into the current scratch buffer instead of being referenced as its
// own gather slice. Small payloads are cheaper to copy than to gather;
// large ones are passed through without copying.
const binaryInlineLimit = 256

// EncodeMessage encodes a message with the legacy (unversioned)
// header. The result is a gathered byte sequence suitable for
// scatter-write I/O; net.Buffers implements io.WriterTo.
func EncodeMessage(message *Message) (net.Buffers, error) {
	return EncodeMessageVersion(message, VersionNone)
}

// EncodeMessageVersion encodes a message with the header variant
// selected by version: VersionNone for the legacy header, Version1 for
// the versioned header. Encoding runs to completion or fails; there is
// no partial output on error.
func EncodeMessageVersion(message *Message, version Version) (net.Buffers, error) {
	if !message.Type.valid() {
		return nil, fmt.Errorf("thrift: encode message: unknown message type %d", byte(message.Type))
	}

	e := &encoder{}
	switch version {
	case Version1:
		e.scratch = appendU32(e.scratch, uint32(Version1)<<16|uint32(message.Type))
		if err := e.binary([]byte(message.Name)); err != nil {
			return nil, fmt.Errorf("thrift: encode message name: %w", err)
		}
	case VersionNone:
		if err := e.binary([]byte(message.Name)); err != nil {
			return nil, fmt.Errorf("thrift: encode message name: %w", err)
		}
		e.scratch = appendByte(e.scratch, byte(message.Type))
	default:
		return nil, fmt.Errorf("thrift: encode message: unknown protocol version 0x%04x", uint16(version))
	}
	e.scratch = appendI32(e.scratch, message.SeqID)

	if err := e.encodeStruct(&message.Payload); err != nil {
		return nil, err
	}
	return e.finish(), nil
}

// EncodeValue encodes a single value tree without a message header,
// for callers that handle struct payloads standalone.
func EncodeValue(value Value) (net.Buffers, error) {
	e := &encoder{}
	if err := e.encodeValue(value.TypeID(), value); err != nil {
		return nil, err
	}
	return e.finish(), nil
}

// encoder accumulates output as a gather list. Scalars append to a
// scratch slice; large binaries are referenced directly so their bytes
// are never copied.
type encoder struct {
	buffers net.Buffers
	scratch []byte
}

// raw appends an opaque byte run, gathering large runs without a copy.
func (e *encoder) raw(data []byte) {
	if len(data) >= binaryInlineLimit {
		e.flush()
		e.buffers = append(e.buffers, data)
		return
	}
	e.scratch = append(e.scratch, data...)
}

// flush moves the scratch buffer into the gather list.
func (e *encoder) flush() {
	if len(e.scratch) > 0 {
		e.buffers = append(e.buffers, e.scratch)
		e.scratch = nil
	}
}

// finish returns the completed gather list.
func (e *encoder) finish() net.Buffers {
	e.flush()
	return e.buffers
}

// binary emits an i32 length prefix followed by the bytes.
func (e *encoder) binary(data []byte) error {
	if int64(len(data)) > math.MaxInt32 {
		return fmt.Errorf("binary length %d exceeds i32 range", len(data))
	}
	e.scratch = appendI32(e.scratch, int32(len(data)))
	e.raw(data)
	return nil
}

// encodeStruct emits the struct's fields in caller order, each with
// its type tag and i16 id, terminated by a STOP byte. The struct name
// is in-memory only and is not emitted.
func (e *encoder) encodeStruct(s *Struct) error {
	for index, field := range s.Fields {
		if !field.Type.valid() {
			return fmt.Errorf("thrift: encode struct %q field %d: invalid type tag %d", s.Name, index, byte(field.Type))
		}
		if field.Value == nil {
			return fmt.Errorf("thrift: encode struct %q field %d: nil value", s.Name, index)
		}
		if !tagsCompatible(field.Type, field.Value.TypeID()) {
			return fmt.Errorf("thrift: encode struct %q field %d: declared %v but value is %v",
				s.Name, index, field.Type, field.Value.TypeID())
		}
		e.scratch = appendByte(e.scratch, byte(field.Type))
		e.scratch = appendI16(e.scratch, field.ID)
		if err := e.encodeValue(field.Type, field.Value); err != nil {
			return err
		}
	}
	e.scratch = appendByte(e.scratch, byte(TypeStop))
	return nil
}

// encodeValue emits the payload of a single value under its declared
// type tag. The tag has already been written by the caller (field
// header or container header).
func (e *encoder) encodeValue(declared TypeID, value Value) error {
	if !tagsCompatible(declared, value.TypeID()) {
		return fmt.Errorf("thrift: encode value: declared %v but value is %v", declared, value.TypeID())
	}

	switch v := value.(type) {
	case Void:
		// No payload bytes.
		return nil
	case Bool:
		e.scratch = appendBool(e.scratch, bool(v))
		return nil
	case Byte:
		e.scratch = appendByte(e.scratch, byte(v))
		return nil
	case I8:
		e.scratch = appendByte(e.scratch, byte(v))
		return nil
	case I16:
		e.scratch = appendI16(e.scratch, int16(v))
		return nil
	case I32:
		e.scratch = appendI32(e.scratch, int32(v))
		return nil
	case I64:
		e.scratch = appendI64(e.scratch, int64(v))
		return nil
	case U64:
		e.scratch = appendU64(e.scratch, uint64(v))
		return nil
	case Double:
		e.scratch = appendDouble(e.scratch, float64(v))
		return nil
	case Binary:
		if err := e.binary(v); err != nil {
			return fmt.Errorf("thrift: encode binary: %w", err)
		}
		return nil
	case *Struct:
		return e.encodeStruct(v)
	case *Map:
		return e.encodeMap(v)
	case *Set:
		return e.encodeListLike(TypeSet, v.ElemType, v.Elements)
	case *List:
		return e.encodeListLike(TypeList, v.ElemType, v.Elements)
	}
	return fmt.Errorf("thrift: encode value: unsupported value type %T", value)
}

func (e *encoder) encodeMap(m *Map) error {
	if !m.KeyType.valid() {
		return fmt.Errorf("thrift: encode map: invalid key type tag %d", byte(m.KeyType))
	}
	if !m.ValueType.valid() {
		return fmt.Errorf("thrift: encode map: invalid value type tag %d", byte(m.ValueType))
	}
	if int64(len(m.Entries)) > math.MaxInt32 {
		return fmt.Errorf("thrift: encode map: size %d exceeds i32 range", len(m.Entries))
	}
	e.scratch = appendByte(e.scratch, byte(m.KeyType))
	e.scratch = appendByte(e.scratch, byte(m.ValueType))
	e.scratch = appendI32(e.scratch, int32(len(m.Entries)))
	for index, entry := range m.Entries {
		if entry.Key == nil || entry.Value == nil {
			return fmt.Errorf("thrift: encode map entry %d: nil key or value", index)
		}
		if err := e.encodeValue(m.KeyType, entry.Key); err != nil {
			return fmt.Errorf("thrift: encode map entry %d key: %w", index, err)
		}
		if err := e.encodeValue(m.ValueType, entry.Value); err != nil {
			return fmt.Errorf("thrift: encode map entry %d value: %w", index, err)
		}
	}
	return nil
}

func (e *encoder) encodeListLike(container, elemType TypeID, elements []Value) error {
	if !elemType.valid() {
		return fmt.Errorf("thrift: encode %v: invalid element type tag %d", container, byte(elemType))
	}
	if int64(len(elements)) > math.MaxInt32 {
		return fmt.Errorf("thrift: encode %v: size %d exceeds i32 range", container, len(elements))
	}
	e.scratch = appendByte(e.scratch, byte(elemType))
	e.scratch = appendI32(e.scratch, int32(len(elements)))
	for index, element := range elements {
		if element == nil {
			return fmt.Errorf("thrift: encode %v element %d: nil value", container, index)
		}
		if err := e.encodeValue(elemType, element); err != nil {
			return fmt.Errorf("thrift: encode %v element %d: %w", container, index, err)
		}
	}
	return nil
}
