// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"fmt"

	"github.com/hibari/ubf-thrift/contract"
	"github.com/hibari/ubf-thrift/term"
	"github.com/hibari/ubf-thrift/thrift"
)

// Sentinel struct names. Each identifies one term variant; "$N" covers
// both Integer and Float, told apart by the field type (I64 vs DOUBLE).
const (
	SentinelBinary   = "$B"
	SentinelNumber   = "$N"
	SentinelBool     = "$O"
	SentinelAtom     = "$A"
	SentinelString   = "$S"
	SentinelList     = "$L"
	SentinelTuple    = "$T"
	SentinelPropList = "$P"
	SentinelRecord   = "$R"
)

// IsSentinel reports whether name is a reserved sentinel struct name.
func IsSentinel(name string) bool {
	switch name {
	case SentinelBinary, SentinelNumber, SentinelBool, SentinelAtom,
		SentinelString, SentinelList, SentinelTuple, SentinelPropList,
		SentinelRecord:
		return true
	}
	return false
}

// Error is a bridge decode failure: a sentinel envelope whose inner
// shape deviates from the mapping, or an atom or record rejected by
// the registry or the safe-mode atom gate.
type Error struct {
	// Sentinel is the envelope being decoded, empty when the struct
	// carried no recognizable sentinel at all.
	Sentinel string

	// Reason names the deviation: "not-sentinel", "field-count",
	// "field-id", "field-type", "elem-type", "key-type",
	// "missing-record-name", "duplicate-field", "unknown-field",
	// "unknown-record", "unknown-atom".
	Reason string

	// Value is the offending item, when one exists.
	Value any
}

func (e *Error) Error() string {
	if e.Sentinel == "" {
		return fmt.Sprintf("bridge: badrecord: %s (%v)", e.Reason, e.Value)
	}
	return fmt.Sprintf("bridge: badrecord %s: %s (%v)", e.Sentinel, e.Reason, e.Value)
}

// Bridge converts between terms and Thrift structs. The registry
// orders record fields; the atom table gates atom admission. Both may
// be nil: without a registry every record encodes through the tuple
// fallback and every record decode fails; without an atom table safe
// decoding rejects every atom and unsafe decoding admits every name.
type Bridge struct {
	Registry contract.Registry
	Atoms    *term.AtomTable

	// Safe forbids materializing atom names not already known to the
	// atom table.
	Safe bool
}

// Encode maps a term onto its sentinel envelope. The mapping is total:
// every term encodes. A record whose schema is absent from the
// registry degrades to the tuple form (name atom first, then the
// fields) under "$T", producing the same struct as that tuple and so
// decoding back as a Tuple; apart from that case, distinct terms
// produce distinct structs.
func (b *Bridge) Encode(t term.Term) (*thrift.Struct, error) {
	switch v := t.(type) {
	case term.Binary:
		return envelope(SentinelBinary, thrift.TypeBinary, thrift.Binary(v)), nil
	case term.Integer:
		return envelope(SentinelNumber, thrift.TypeI64, thrift.I64(v)), nil
	case term.Float:
		return envelope(SentinelNumber, thrift.TypeDouble, thrift.Double(v)), nil
	case term.Bool:
		return envelope(SentinelBool, thrift.TypeBool, thrift.Bool(v)), nil
	case term.Atom:
		return envelope(SentinelAtom, thrift.TypeBinary, thrift.Binary(v)), nil
	case term.String:
		return envelope(SentinelString, thrift.TypeBinary, thrift.Binary(v)), nil
	case term.List:
		return b.encodeSequence(SentinelList, v)
	case term.Tuple:
		return b.encodeSequence(SentinelTuple, v)
	case term.PropList:
		return b.encodePropList(v)
	case term.Record:
		return b.encodeRecord(v)
	case nil:
		return nil, fmt.Errorf("bridge: encode nil term")
	}
	return nil, fmt.Errorf("bridge: encode: unsupported term type %T", t)
}

// envelope builds the one-field sentinel struct. Field id 1 and the
// empty field name are fixed by the mapping.
func envelope(sentinel string, typeID thrift.TypeID, value thrift.Value) *thrift.Struct {
	return &thrift.Struct{
		Name:   sentinel,
		Fields: []thrift.Field{{Type: typeID, ID: 1, Value: value}},
	}
}

// encodeSequence maps a list or tuple onto a LIST of STRUCT. The
// element tag is uniformly STRUCT regardless of content, preserving
// heterogeneity.
func (b *Bridge) encodeSequence(sentinel string, elements []term.Term) (*thrift.Struct, error) {
	encoded := make([]thrift.Value, len(elements))
	for index, element := range elements {
		child, err := b.Encode(element)
		if err != nil {
			return nil, err
		}
		encoded[index] = child
	}
	return envelope(sentinel, thrift.TypeList, &thrift.List{
		ElemType: thrift.TypeStruct,
		Elements: encoded,
	}), nil
}

func (b *Bridge) encodePropList(pairs term.PropList) (*thrift.Struct, error) {
	entries := make([]thrift.MapEntry, len(pairs))
	for index, pair := range pairs {
		key, err := b.Encode(pair.Key)
		if err != nil {
			return nil, err
		}
		value, err := b.Encode(pair.Value)
		if err != nil {
			return nil, err
		}
		entries[index] = thrift.MapEntry{Key: key, Value: value}
	}
	return envelope(SentinelPropList, thrift.TypeMap, &thrift.Map{
		KeyType:   thrift.TypeStruct,
		ValueType: thrift.TypeStruct,
		Entries:   entries,
	}), nil
}

// encodeRecord maps a record onto a MAP of BINARY to STRUCT: one
// reserved entry with key "" holding the record name as an atom
// envelope, then one entry per field keyed by the schema field name.
// Without a schema for (name, arity) the record falls back to its
// tuple form.
func (b *Bridge) encodeRecord(record term.Record) (*thrift.Struct, error) {
	var fieldNames []string
	if b.Registry != nil {
		fieldNames, _ = b.Registry.RecordFields(string(record.Name), len(record.Fields))
	}
	if fieldNames == nil {
		fallback := make(term.Tuple, 0, len(record.Fields)+1)
		fallback = append(fallback, record.Name)
		fallback = append(fallback, record.Fields...)
		return b.encodeSequence(SentinelTuple, fallback)
	}

	entries := make([]thrift.MapEntry, 0, len(record.Fields)+1)
	nameEnvelope, err := b.Encode(record.Name)
	if err != nil {
		return nil, err
	}
	entries = append(entries, thrift.MapEntry{Key: thrift.Binary(""), Value: nameEnvelope})
	for index, fieldName := range fieldNames {
		value, err := b.Encode(record.Fields[index])
		if err != nil {
			return nil, err
		}
		entries = append(entries, thrift.MapEntry{Key: thrift.Binary(fieldName), Value: value})
	}
	return envelope(SentinelRecord, thrift.TypeMap, &thrift.Map{
		KeyType:   thrift.TypeBinary,
		ValueType: thrift.TypeStruct,
		Entries:   entries,
	}), nil
}

// Decode maps a sentinel envelope back to its term. The struct's name
// selects the variant; every deviation from the envelope shape fails
// with *Error. Structs without a sentinel name are not part of the
// mapping — callers pass them through as plain Thrift values.
func (b *Bridge) Decode(s *thrift.Struct) (term.Term, error) {
	if !IsSentinel(s.Name) {
		return nil, &Error{Reason: "not-sentinel", Value: s.Name}
	}

	switch s.Name {
	case SentinelBinary:
		value, err := b.inner(s, thrift.TypeBinary)
		if err != nil {
			return nil, err
		}
		return term.Binary(value.(thrift.Binary)), nil

	case SentinelNumber:
		value, err := b.innerNumber(s)
		if err != nil {
			return nil, err
		}
		return value, nil

	case SentinelBool:
		value, err := b.inner(s, thrift.TypeBool)
		if err != nil {
			return nil, err
		}
		return term.Bool(value.(thrift.Bool)), nil

	case SentinelAtom:
		value, err := b.inner(s, thrift.TypeBinary)
		if err != nil {
			return nil, err
		}
		return b.admitAtom(SentinelAtom, string(value.(thrift.Binary)))

	case SentinelString:
		value, err := b.inner(s, thrift.TypeBinary)
		if err != nil {
			return nil, err
		}
		return term.String(value.(thrift.Binary)), nil

	case SentinelList:
		elements, err := b.decodeSequence(s, b.Decode)
		if err != nil {
			return nil, err
		}
		return term.List(elements), nil

	case SentinelTuple:
		elements, err := b.decodeSequence(s, b.Decode)
		if err != nil {
			return nil, err
		}
		return term.Tuple(elements), nil

	case SentinelPropList:
		return b.decodePropList(s, b.Decode)

	case SentinelRecord:
		return b.decodeRecord(s, b.Decode)
	}
	return nil, &Error{Reason: "not-sentinel", Value: s.Name}
}

// inner validates the fixed envelope frame — exactly one field, id 1 —
// and the field's type, returning its value.
func (b *Bridge) inner(s *thrift.Struct, want thrift.TypeID) (thrift.Value, error) {
	if len(s.Fields) != 1 {
		return nil, &Error{Sentinel: s.Name, Reason: "field-count", Value: len(s.Fields)}
	}
	field := s.Fields[0]
	if field.ID != 1 {
		return nil, &Error{Sentinel: s.Name, Reason: "field-id", Value: field.ID}
	}
	if field.Type != want {
		return nil, &Error{Sentinel: s.Name, Reason: "field-type", Value: field.Type}
	}
	if field.Value == nil || field.Value.TypeID() != want {
		return nil, &Error{Sentinel: s.Name, Reason: "field-type", Value: field.Value}
	}
	return field.Value, nil
}

// innerNumber handles the "$N" envelope, which admits two field
// types: I64 for integers and DOUBLE for floats.
func (b *Bridge) innerNumber(s *thrift.Struct) (term.Term, error) {
	if len(s.Fields) != 1 {
		return nil, &Error{Sentinel: s.Name, Reason: "field-count", Value: len(s.Fields)}
	}
	field := s.Fields[0]
	if field.ID != 1 {
		return nil, &Error{Sentinel: s.Name, Reason: "field-id", Value: field.ID}
	}
	switch value := field.Value.(type) {
	case thrift.I64:
		return term.Integer(value), nil
	case thrift.Double:
		return term.Float(value), nil
	}
	return nil, &Error{Sentinel: s.Name, Reason: "field-type", Value: field.Type}
}

// admitAtom applies the safe-mode gate to an incoming atom name.
func (b *Bridge) admitAtom(sentinel, name string) (term.Term, error) {
	if b.Safe {
		if b.Atoms == nil {
			return nil, &Error{Sentinel: sentinel, Reason: "unknown-atom", Value: name}
		}
		atom, known := b.Atoms.Lookup(name)
		if !known {
			return nil, &Error{Sentinel: sentinel, Reason: "unknown-atom", Value: name}
		}
		return atom, nil
	}
	if b.Atoms != nil {
		return b.Atoms.Intern(name), nil
	}
	return term.Atom(name), nil
}

// decodeSequence unpacks a "$L"/"$T" envelope: a LIST whose element
// tag is STRUCT and whose elements decode recursively via decode.
func (b *Bridge) decodeSequence(s *thrift.Struct, decode func(*thrift.Struct) (term.Term, error)) ([]term.Term, error) {
	value, err := b.inner(s, thrift.TypeList)
	if err != nil {
		return nil, err
	}
	list := value.(*thrift.List)
	if list.ElemType != thrift.TypeStruct {
		return nil, &Error{Sentinel: s.Name, Reason: "elem-type", Value: list.ElemType}
	}
	elements := make([]term.Term, len(list.Elements))
	for index, element := range list.Elements {
		child, ok := element.(*thrift.Struct)
		if !ok {
			return nil, &Error{Sentinel: s.Name, Reason: "elem-type", Value: element.TypeID()}
		}
		decoded, err := decode(child)
		if err != nil {
			return nil, err
		}
		elements[index] = decoded
	}
	return elements, nil
}

func (b *Bridge) decodePropList(s *thrift.Struct, decode func(*thrift.Struct) (term.Term, error)) (term.Term, error) {
	value, err := b.inner(s, thrift.TypeMap)
	if err != nil {
		return nil, err
	}
	pairs := value.(*thrift.Map)
	if pairs.KeyType != thrift.TypeStruct || pairs.ValueType != thrift.TypeStruct {
		return nil, &Error{Sentinel: s.Name, Reason: "key-type", Value: pairs.KeyType}
	}
	result := make(term.PropList, len(pairs.Entries))
	for index, entry := range pairs.Entries {
		keyStruct, keyOK := entry.Key.(*thrift.Struct)
		valueStruct, valueOK := entry.Value.(*thrift.Struct)
		if !keyOK || !valueOK {
			return nil, &Error{Sentinel: s.Name, Reason: "elem-type", Value: entry.Key.TypeID()}
		}
		key, err := decode(keyStruct)
		if err != nil {
			return nil, err
		}
		pairValue, err := decode(valueStruct)
		if err != nil {
			return nil, err
		}
		result[index] = term.Pair{Key: key, Value: pairValue}
	}
	return result, nil
}

// decodeRecord unpacks a "$R" envelope: a MAP of BINARY to STRUCT
// holding the reserved ""-keyed record name plus one entry per field.
// The registry schema for (name, arity) dictates the field order of
// the resulting record.
func (b *Bridge) decodeRecord(s *thrift.Struct, decode func(*thrift.Struct) (term.Term, error)) (term.Term, error) {
	value, err := b.inner(s, thrift.TypeMap)
	if err != nil {
		return nil, err
	}
	entries := value.(*thrift.Map)
	if entries.KeyType != thrift.TypeBinary || entries.ValueType != thrift.TypeStruct {
		return nil, &Error{Sentinel: s.Name, Reason: "key-type", Value: entries.KeyType}
	}

	var recordName string
	haveName := false
	fieldValues := make(map[string]term.Term, len(entries.Entries))
	for _, entry := range entries.Entries {
		key, keyOK := entry.Key.(thrift.Binary)
		child, valueOK := entry.Value.(*thrift.Struct)
		if !keyOK || !valueOK {
			return nil, &Error{Sentinel: s.Name, Reason: "key-type", Value: entry.Key.TypeID()}
		}

		if len(key) == 0 {
			if haveName {
				return nil, &Error{Sentinel: s.Name, Reason: "duplicate-field", Value: ""}
			}
			name, err := b.decodeRecordName(child, decode)
			if err != nil {
				return nil, err
			}
			recordName = name
			haveName = true
			continue
		}

		fieldName := string(key)
		if _, duplicate := fieldValues[fieldName]; duplicate {
			return nil, &Error{Sentinel: s.Name, Reason: "duplicate-field", Value: fieldName}
		}
		decoded, err := decode(child)
		if err != nil {
			return nil, err
		}
		fieldValues[fieldName] = decoded
	}

	if !haveName {
		return nil, &Error{Sentinel: s.Name, Reason: "missing-record-name", Value: nil}
	}

	arity := len(fieldValues)
	if b.Registry == nil {
		return nil, &Error{Sentinel: s.Name, Reason: "unknown-record", Value: contract.RecordID{Name: recordName, Arity: arity}}
	}
	schema, known := b.Registry.RecordFields(recordName, arity)
	if !known {
		return nil, &Error{Sentinel: s.Name, Reason: "unknown-record", Value: contract.RecordID{Name: recordName, Arity: arity}}
	}

	fields := make([]term.Term, len(schema))
	for index, fieldName := range schema {
		fieldValue, present := fieldValues[fieldName]
		if !present {
			return nil, &Error{Sentinel: s.Name, Reason: "unknown-field", Value: fieldName}
		}
		fields[index] = fieldValue
	}

	atom, err := b.admitAtom(s.Name, recordName)
	if err != nil {
		return nil, err
	}
	return term.Record{Name: atom.(term.Atom), Fields: fields}, nil
}

// decodeRecordName unpacks the reserved entry's value, which must be
// an atom envelope. The name itself is gated later by admitAtom so
// that safe-mode rejection reports the record sentinel.
func (b *Bridge) decodeRecordName(s *thrift.Struct, decode func(*thrift.Struct) (term.Term, error)) (string, error) {
	// Named trees carry "$A"; wire trees carry a bare binary envelope.
	// Both resolve to the raw name bytes.
	decoded, err := decode(s)
	if err != nil {
		return "", err
	}
	switch name := decoded.(type) {
	case term.Atom:
		return string(name), nil
	case term.Binary:
		return string(name), nil
	}
	return "", &Error{Sentinel: SentinelRecord, Reason: "missing-record-name", Value: fmt.Sprintf("%T", decoded)}
}
