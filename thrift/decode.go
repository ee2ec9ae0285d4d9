// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package thrift

import (
	"bytes"
	"errors"
	"fmt"
)

// Decoder default resource bounds. All are overridable through
// DecoderOptions; a negative option disables the bound entirely.
const (
	// DefaultMaxDepth bounds the nesting depth of the value tree.
	DefaultMaxDepth = 64

	// DefaultMaxContainerSize bounds the declared element count of a
	// single map, set, or list.
	DefaultMaxContainerSize = 1 << 24

	// DefaultMaxBinaryLength bounds a single length-prefixed byte
	// string, including the message name.
	DefaultMaxBinaryLength = 16 * 1024 * 1024
)

// DecoderOptions configures the resource bounds of a Decoder. The zero
// value selects the defaults; negative values disable the bound.
type DecoderOptions struct {
	MaxDepth         int
	MaxContainerSize int
	MaxBinaryLength  int
}

func resolveBound(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	if value < 0 {
		return 0 // unbounded
	}
	return value
}

// Result is a completed decode: exactly one top-level message, the
// bytes that trailed it (returned verbatim), and the header variant
// the message arrived under.
type Result struct {
	Message   *Message
	Remainder []byte
	Version   Version
}

// Decoder is a resumable push parser for one Thrift message. Feed it
// byte chunks as they arrive; it buffers the unconsumed tail and keeps
// its parsing position in an explicit frame stack, so chunk boundaries
// may fall anywhere — including mid-scalar — without affecting the
// result. The host stack is never consumed in proportion to wire
// depth.
//
// A Decoder is single-owner: calls must be serialized by the caller.
// After a Result is delivered the Decoder is spent; decode the next
// message with a fresh Decoder seeded with the previous Remainder.
type Decoder struct {
	maxDepth         int
	maxContainerSize int
	maxBinaryLength  int

	buffer []byte
	stack  []*frame

	err  error
	done bool
}

// errNeedMore is the internal signal that the buffer ends mid-item.
// It never escapes the package: Feed translates it to a (nil, nil)
// continuation return.
var errNeedMore = errors.New("need more input")

type frameKind int

const (
	frameMessage frameKind = iota
	frameStruct
	frameMap
	frameSet
	frameList
)

func (k frameKind) String() string {
	switch k {
	case frameMessage:
		return "message"
	case frameStruct:
		return "struct"
	case frameMap:
		return "map"
	case frameSet:
		return "set"
	case frameList:
		return "list"
	}
	return fmt.Sprintf("frameKind(%d)", int(k))
}

// frame is one suspended construct on the decoder's pushdown stack.
// Exactly one group of fields is live, selected by kind.
type frame struct {
	kind frameKind

	// Message header, once parsed.
	headerDone  bool
	messageName string
	messageType MessageType
	seqID       int32
	version     Version

	// Struct in progress. When havePending is set, the field header
	// has been consumed and the field's payload is being parsed.
	fields      []Field
	pendingType TypeID
	pendingID   int16
	havePending bool

	// Container in progress. size is the declared element count;
	// completion is reached when the collected elements match it.
	keyType    TypeID
	valueType  TypeID
	elemType   TypeID
	size       int32
	entries    []MapEntry
	elements   []Value
	pendingKey Value
	haveKey    bool
}

// NewDecoder returns a Decoder ready to receive the first bytes of a
// message.
func NewDecoder(options DecoderOptions) *Decoder {
	return &Decoder{
		maxDepth:         resolveBound(options.MaxDepth, DefaultMaxDepth),
		maxContainerSize: resolveBound(options.MaxContainerSize, DefaultMaxContainerSize),
		maxBinaryLength:  resolveBound(options.MaxBinaryLength, DefaultMaxBinaryLength),
		stack:            []*frame{{kind: frameMessage}},
	}
}

// DecodeMessage decodes a complete message from data in a single call.
// It returns ErrTruncated if data ends before the message does; use a
// Decoder directly for incremental input.
func DecodeMessage(data []byte) (*Result, error) {
	decoder := NewDecoder(DecoderOptions{})
	result, err := decoder.Feed(data)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrTruncated
	}
	return result, nil
}

// Feed appends data to the decoder's buffer and advances the parse as
// far as the buffered bytes allow. It returns exactly one of:
//
//   - (result, nil): the message completed; the decoder is spent
//   - (nil, nil): more input is required
//   - (nil, err): a fatal decode error; the error is sticky
func (d *Decoder) Feed(data []byte) (*Result, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.done {
		return nil, ErrDecoderDone
	}
	d.buffer = append(d.buffer, data...)
	result, err := d.run()
	if err != nil {
		if errors.Is(err, errNeedMore) {
			return nil, nil
		}
		d.err = err
		return nil, err
	}
	return result, nil
}

// run is the trampoline: it repeatedly inspects the top frame and
// either consumes buffered bytes, pushes a child frame, or pops a
// completed construct into its parent. It returns errNeedMore when the
// buffer runs out mid-item; the buffer is left positioned so that the
// next Feed re-enters the same item.
func (d *Decoder) run() (*Result, error) {
	for {
		top := d.stack[len(d.stack)-1]
		switch top.kind {
		case frameMessage:
			if err := d.stepMessage(top); err != nil {
				return nil, err
			}

		case frameStruct:
			result, err := d.stepStruct(top)
			if err != nil || result != nil {
				return result, err
			}

		case frameMap:
			result, err := d.stepMap(top)
			if err != nil || result != nil {
				return result, err
			}

		case frameSet, frameList:
			result, err := d.stepListLike(top)
			if err != nil || result != nil {
				return result, err
			}
		}
	}
}

// stepMessage parses the message header and pushes the payload struct
// frame. The header is parsed atomically against the buffer: either
// all header bytes are present or nothing is consumed.
func (d *Decoder) stepMessage(f *frame) error {
	if f.headerDone {
		// The payload frame pops directly into a Result; control never
		// returns here.
		return d.fatal(StageMessage, "state", f.kind)
	}

	first, _, ok := takeU32(d.buffer)
	if !ok {
		return errNeedMore
	}

	// The high 16 bits of the first word are the only reliable
	// discriminator between the two header forms: a legacy header
	// starts with a non-negative i32 name length, whose high bit is
	// never set.
	if first>>16 == uint32(Version1) {
		return d.parseVersionedHeader(f, first)
	}
	return d.parseLegacyHeader(f)
}

func (d *Decoder) parseVersionedHeader(f *frame, first uint32) error {
	messageType := MessageType(first & 0xff)
	if !messageType.valid() {
		return d.fatal(StageMessage, "message-type", byte(first&0xff))
	}

	nameLength, _, ok := takeI32(d.buffer[4:])
	if !ok {
		return errNeedMore
	}
	if err := d.checkNameLength(nameLength); err != nil {
		return err
	}

	total := 4 + 4 + int(nameLength) + 4
	if len(d.buffer) < total {
		return errNeedMore
	}
	name := string(d.buffer[8 : 8+nameLength])
	seqID, _, _ := takeI32(d.buffer[8+nameLength:])

	d.consume(total)
	d.finishHeader(f, name, messageType, seqID, Version1)
	return nil
}

func (d *Decoder) parseLegacyHeader(f *frame) error {
	nameLength, _, _ := takeI32(d.buffer)
	if err := d.checkNameLength(nameLength); err != nil {
		return err
	}

	total := 4 + int(nameLength) + 1 + 4
	if len(d.buffer) < total {
		return errNeedMore
	}
	name := string(d.buffer[4 : 4+nameLength])
	typeByte := d.buffer[4+nameLength]
	messageType := MessageType(typeByte)
	if !messageType.valid() {
		return d.fatal(StageMessage, "message-type", typeByte)
	}
	seqID, _, _ := takeI32(d.buffer[4+int(nameLength)+1:])

	d.consume(total)
	d.finishHeader(f, name, messageType, seqID, VersionNone)
	return nil
}

func (d *Decoder) checkNameLength(nameLength int32) error {
	if nameLength < 0 {
		return d.fatal(StageMessage, "method-name", nameLength)
	}
	if d.maxBinaryLength > 0 && int(nameLength) > d.maxBinaryLength {
		return d.fatal(StageMessage, "method-name", nameLength)
	}
	return nil
}

func (d *Decoder) finishHeader(f *frame, name string, messageType MessageType, seqID int32, version Version) {
	f.headerDone = true
	f.messageName = name
	f.messageType = messageType
	f.seqID = seqID
	f.version = version
	d.stack = append(d.stack, &frame{kind: frameStruct})
}

// stepStruct advances a struct frame by one item: a pending field
// payload, the next field header, or the STOP byte that completes the
// struct.
func (d *Decoder) stepStruct(f *frame) (*Result, error) {
	if f.havePending {
		value, pushed, err := d.parseValue(f.pendingType)
		if err != nil || pushed {
			return nil, err
		}
		d.attach(f, value)
		return nil, nil
	}

	tag, _, ok := takeByte(d.buffer)
	if !ok {
		return nil, errNeedMore
	}
	if TypeID(tag) == TypeStop {
		d.consume(1)
		return d.complete(&Struct{Fields: f.fields})
	}
	if !TypeID(tag).valid() {
		return nil, d.fatal(StageFields, "field-type", tag)
	}

	// Field header is tag + i16 id, consumed atomically.
	if len(d.buffer) < 3 {
		return nil, errNeedMore
	}
	id, _, _ := takeI16(d.buffer[1:])
	d.consume(3)
	f.pendingType = TypeID(tag)
	f.pendingID = id
	f.havePending = true
	return nil, nil
}

// stepMap advances a map frame: completion check, then the next key or
// value payload.
func (d *Decoder) stepMap(f *frame) (*Result, error) {
	if !f.haveKey && int32(len(f.entries)) == f.size {
		return d.complete(&Map{KeyType: f.keyType, ValueType: f.valueType, Entries: f.entries})
	}

	expected := f.keyType
	if f.haveKey {
		expected = f.valueType
	}
	value, pushed, err := d.parseValue(expected)
	if err != nil || pushed {
		return nil, err
	}
	d.attach(f, value)
	return nil, nil
}

// stepListLike advances a set or list frame.
func (d *Decoder) stepListLike(f *frame) (*Result, error) {
	if int32(len(f.elements)) == f.size {
		if f.kind == frameSet {
			return d.complete(&Set{ElemType: f.elemType, Elements: f.elements})
		}
		return d.complete(&List{ElemType: f.elemType, Elements: f.elements})
	}

	value, pushed, err := d.parseValue(f.elemType)
	if err != nil || pushed {
		return nil, err
	}
	d.attach(f, value)
	return nil, nil
}

// parseValue parses the payload of a single value of the given type.
// Scalars and binaries are consumed atomically and returned directly;
// structs and containers consume their header (if any) and push a
// child frame, reported through pushed.
func (d *Decoder) parseValue(typeID TypeID) (value Value, pushed bool, err error) {
	switch typeID {
	case TypeVoid:
		return Void{}, false, nil

	case TypeBool:
		b, n, ok := takeByte(d.buffer)
		if !ok {
			return nil, false, errNeedMore
		}
		if b > 1 {
			return nil, false, d.fatal(StageBool, "value", b)
		}
		d.consume(n)
		return Bool(b == 1), false, nil

	case TypeByte:
		b, n, ok := takeByte(d.buffer)
		if !ok {
			return nil, false, errNeedMore
		}
		d.consume(n)
		return Byte(b), false, nil

	case TypeI8:
		b, n, ok := takeByte(d.buffer)
		if !ok {
			return nil, false, errNeedMore
		}
		d.consume(n)
		return I8(int8(b)), false, nil

	case TypeI16:
		v, n, ok := takeI16(d.buffer)
		if !ok {
			return nil, false, errNeedMore
		}
		d.consume(n)
		return I16(v), false, nil

	case TypeI32:
		v, n, ok := takeI32(d.buffer)
		if !ok {
			return nil, false, errNeedMore
		}
		d.consume(n)
		return I32(v), false, nil

	case TypeI64:
		v, n, ok := takeI64(d.buffer)
		if !ok {
			return nil, false, errNeedMore
		}
		d.consume(n)
		return I64(v), false, nil

	case TypeU64:
		v, n, ok := takeU64(d.buffer)
		if !ok {
			return nil, false, errNeedMore
		}
		d.consume(n)
		return U64(v), false, nil

	case TypeDouble:
		v, n, ok := takeDouble(d.buffer)
		if !ok {
			return nil, false, errNeedMore
		}
		d.consume(n)
		return Double(v), false, nil

	case TypeBinary:
		return d.parseBinary()

	case TypeStruct:
		if err := d.push(&frame{kind: frameStruct}); err != nil {
			return nil, false, err
		}
		return nil, true, nil

	case TypeMap:
		return nil, true, d.parseMapHeader()

	case TypeSet:
		return nil, true, d.parseListLikeHeader(frameSet)

	case TypeList:
		return nil, true, d.parseListLikeHeader(frameList)
	}
	return nil, false, d.fatal(StageFields, "field-type", byte(typeID))
}

// parseBinary consumes the i32 length prefix and the payload bytes
// atomically. The payload is cloned so the returned value does not pin
// the decoder's buffer.
func (d *Decoder) parseBinary() (Value, bool, error) {
	length, _, ok := takeI32(d.buffer)
	if !ok {
		return nil, false, errNeedMore
	}
	if length < 0 {
		return nil, false, d.fatal(StageBinary, "length", length)
	}
	if d.maxBinaryLength > 0 && int(length) > d.maxBinaryLength {
		return nil, false, d.fatal(StageBinary, "length", length)
	}
	total := 4 + int(length)
	if len(d.buffer) < total {
		return nil, false, errNeedMore
	}
	payload := bytes.Clone(d.buffer[4:total])
	d.consume(total)
	return Binary(payload), false, nil
}

// parseMapHeader consumes the key type, value type, and size atomically
// and pushes the map frame.
func (d *Decoder) parseMapHeader() error {
	if len(d.buffer) < 6 {
		return errNeedMore
	}
	keyType := TypeID(d.buffer[0])
	valueType := TypeID(d.buffer[1])
	size, _, _ := takeI32(d.buffer[2:])

	if !keyType.valid() {
		return d.fatal(StageMap, "map-key-type", byte(keyType))
	}
	if !valueType.valid() {
		return d.fatal(StageMap, "map-value-type", byte(valueType))
	}
	if size < 0 || (d.maxContainerSize > 0 && int(size) > d.maxContainerSize) {
		return d.fatal(StageMap, "map-size", size)
	}
	if err := d.push(&frame{kind: frameMap, keyType: keyType, valueType: valueType, size: size}); err != nil {
		return err
	}
	d.consume(6)
	return nil
}

// parseListLikeHeader consumes the element type and size atomically and
// pushes the set or list frame.
func (d *Decoder) parseListLikeHeader(kind frameKind) error {
	stage, typeField, sizeField := StageList, "list-elem-type", "list-size"
	if kind == frameSet {
		stage, typeField, sizeField = StageSet, "set-elem-type", "set-size"
	}

	if len(d.buffer) < 5 {
		return errNeedMore
	}
	elemType := TypeID(d.buffer[0])
	size, _, _ := takeI32(d.buffer[1:])

	if !elemType.valid() {
		return d.fatal(stage, typeField, byte(elemType))
	}
	if size < 0 || (d.maxContainerSize > 0 && int(size) > d.maxContainerSize) {
		return d.fatal(stage, sizeField, size)
	}
	if err := d.push(&frame{kind: kind, elemType: elemType, size: size}); err != nil {
		return err
	}
	d.consume(5)
	return nil
}

// push adds a child frame, enforcing the depth bound.
func (d *Decoder) push(f *frame) error {
	if d.maxDepth > 0 && len(d.stack) >= d.maxDepth {
		return d.fatal(StageStruct, "depth", len(d.stack))
	}
	d.stack = append(d.stack, f)
	return nil
}

// complete pops the top frame and hands its finished value to the
// parent. When the parent is the message frame the decode is done and
// the Result is built.
func (d *Decoder) complete(value Value) (*Result, error) {
	d.stack = d.stack[:len(d.stack)-1]
	parent := d.stack[len(d.stack)-1]

	if parent.kind == frameMessage {
		payload, ok := value.(*Struct)
		if !ok {
			return nil, d.fatal(StageMessage, "payload", fmt.Sprintf("%T", value))
		}
		d.done = true
		remainder := d.buffer
		d.buffer = nil
		return &Result{
			Message: &Message{
				Name:    parent.messageName,
				Type:    parent.messageType,
				SeqID:   parent.seqID,
				Payload: *payload,
			},
			Remainder: remainder,
			Version:   parent.version,
		}, nil
	}

	d.attach(parent, value)
	return nil, nil
}

// attach delivers a finished child value into its parent frame.
func (d *Decoder) attach(f *frame, value Value) {
	switch f.kind {
	case frameStruct:
		f.fields = append(f.fields, Field{Type: f.pendingType, ID: f.pendingID, Value: value})
		f.havePending = false
	case frameMap:
		if !f.haveKey {
			f.pendingKey = value
			f.haveKey = true
		} else {
			f.entries = append(f.entries, MapEntry{Key: f.pendingKey, Value: value})
			f.pendingKey = nil
			f.haveKey = false
		}
	case frameSet, frameList:
		f.elements = append(f.elements, value)
	}
}

// consume drops n parsed bytes from the front of the buffer.
func (d *Decoder) consume(n int) {
	d.buffer = d.buffer[n:]
}

// fatal builds a sticky DecodeError with a state snapshot.
func (d *Decoder) fatal(stage, field string, value any) error {
	top := d.stack[len(d.stack)-1]
	return &DecodeError{
		Stage: stage,
		Field: field,
		Value: value,
		State: fmt.Sprintf("depth=%d frame=%s buffered=%d", len(d.stack), top.kind, len(d.buffer)),
	}
}
