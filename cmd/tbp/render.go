// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/hibari/ubf-thrift/bridge"
	"github.com/hibari/ubf-thrift/lib/codec"
	"github.com/hibari/ubf-thrift/session"
	"github.com/hibari/ubf-thrift/term"
	"github.com/hibari/ubf-thrift/thrift"
)

// renderer writes decoded messages in one of the supported output
// formats.
type renderer struct {
	format string
	writer io.Writer
	bridge *bridge.Bridge

	cborEncoder *codec.Encoder

	// Tree styles. Zero-value styles render plain text, so the same
	// code path serves color and no-color output.
	headerStyle lipgloss.Style
	typeStyle   lipgloss.Style
	fieldStyle  lipgloss.Style
	termStyle   lipgloss.Style
}

func newRenderer(format string, writer io.Writer, color bool, termBridge *bridge.Bridge) (*renderer, error) {
	r := &renderer{format: format, writer: writer, bridge: termBridge}
	switch format {
	case "tree", "json", "compact", "diag":
	case "cbor":
		r.cborEncoder = codec.NewEncoder(writer)
	default:
		return nil, fmt.Errorf("unknown format %q (want tree, json, compact, cbor, or diag)", format)
	}
	if color {
		r.headerStyle = lipgloss.NewStyle().Bold(true)
		r.typeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
		r.fieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
		r.termStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	}
	return r, nil
}

// render writes one decoded message.
func (r *renderer) render(result *thrift.Result) error {
	switch r.format {
	case "tree":
		return r.renderTree(result)
	case "cbor":
		return r.cborEncoder.Encode(messageValue(result, r.bridge))
	case "diag":
		data, err := codec.Marshal(messageValue(result, r.bridge))
		if err != nil {
			return fmt.Errorf("encode CBOR: %w", err)
		}
		diagnostic, err := codec.Diagnose(data)
		if err != nil {
			return fmt.Errorf("diagnose CBOR: %w", err)
		}
		_, err = fmt.Fprintln(r.writer, diagnostic)
		return err
	case "compact":
		return r.renderJSON(result, false)
	}
	return r.renderJSON(result, true)
}

func (r *renderer) renderJSON(result *thrift.Result, indent bool) error {
	value := messageValue(result, r.bridge)
	var output []byte
	var err error
	if indent {
		output, err = json.MarshalIndent(value, "", "  ")
	} else {
		output, err = json.Marshal(value)
	}
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(r.writer, string(output))
	return err
}

// renderTree writes an indented, optionally colored tree view.
func (r *renderer) renderTree(result *thrift.Result) error {
	message := result.Message
	version := "legacy"
	if result.Version == thrift.Version1 {
		version = "v1"
	}
	header := fmt.Sprintf("%s %s seqid=%d (%s)",
		r.headerStyle.Render(message.Type.String()),
		quoteName(message.Name),
		message.SeqID,
		version,
	)
	if _, err := fmt.Fprintln(r.writer, header); err != nil {
		return err
	}

	if message.Name == session.EnvelopeName {
		if unwrapped, err := r.bridge.DecodeWire(&message.Payload); err == nil {
			line := "  term: " + r.termStyle.Render(termNotation(unwrapped))
			if _, err := fmt.Fprintln(r.writer, line); err != nil {
				return err
			}
		}
	}

	return r.writeStructTree(&message.Payload, "  ")
}

func (r *renderer) writeStructTree(s *thrift.Struct, indent string) error {
	for _, field := range s.Fields {
		label := fmt.Sprintf("%s%s %s:",
			indent,
			r.fieldStyle.Render(fmt.Sprintf("%d", field.ID)),
			r.typeStyle.Render(field.Type.String()),
		)
		if err := r.writeValueTree(label, field.Value, indent); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) writeValueTree(label string, value thrift.Value, indent string) error {
	switch v := value.(type) {
	case *thrift.Struct:
		if _, err := fmt.Fprintln(r.writer, label+" struct"); err != nil {
			return err
		}
		return r.writeStructTree(v, indent+"  ")
	case *thrift.Map:
		header := fmt.Sprintf("%s map<%s,%s> (%d entries)",
			label, v.KeyType, v.ValueType, len(v.Entries))
		if _, err := fmt.Fprintln(r.writer, header); err != nil {
			return err
		}
		for _, entry := range v.Entries {
			if err := r.writeValueTree(indent+"  key:", entry.Key, indent+"  "); err != nil {
				return err
			}
			if err := r.writeValueTree(indent+"  value:", entry.Value, indent+"  "); err != nil {
				return err
			}
		}
		return nil
	case *thrift.Set:
		return r.writeSequenceTree(label, "set", v.ElemType, v.Elements, indent)
	case *thrift.List:
		return r.writeSequenceTree(label, "list", v.ElemType, v.Elements, indent)
	}
	_, err := fmt.Fprintf(r.writer, "%s %v\n", label, scalarValue(value))
	return err
}

func (r *renderer) writeSequenceTree(label, kind string, elemType thrift.TypeID, elements []thrift.Value, indent string) error {
	header := fmt.Sprintf("%s %s<%s> (%d elements)", label, kind, elemType, len(elements))
	if _, err := fmt.Fprintln(r.writer, header); err != nil {
		return err
	}
	for index, element := range elements {
		elementLabel := fmt.Sprintf("%s  [%d]:", indent, index)
		if err := r.writeValueTree(elementLabel, element, indent+"  "); err != nil {
			return err
		}
	}
	return nil
}

// messageValue converts a decoded message into generic Go values for
// the JSON, CBOR, and diagnostic formats. Messages named "$UBF" carry
// an extra "term" entry with the unwrapped term in term notation.
func messageValue(result *thrift.Result, termBridge *bridge.Bridge) map[string]any {
	message := result.Message
	version := "legacy"
	if result.Version == thrift.Version1 {
		version = "v1"
	}
	value := map[string]any{
		"name":    message.Name,
		"type":    message.Type.String(),
		"seqid":   message.SeqID,
		"version": version,
		"payload": structValue(&message.Payload),
	}
	if message.Name == session.EnvelopeName {
		if unwrapped, err := termBridge.DecodeWire(&message.Payload); err == nil {
			value["term"] = termNotation(unwrapped)
		}
	}
	return value
}

func structValue(s *thrift.Struct) []any {
	fields := make([]any, len(s.Fields))
	for index, field := range s.Fields {
		fields[index] = map[string]any{
			"id":    field.ID,
			"type":  field.Type.String(),
			"value": valueTree(field.Value),
		}
	}
	return fields
}

func valueTree(value thrift.Value) any {
	switch v := value.(type) {
	case *thrift.Struct:
		return structValue(v)
	case *thrift.Map:
		entries := make([]any, len(v.Entries))
		for index, entry := range v.Entries {
			entries[index] = map[string]any{
				"key":   valueTree(entry.Key),
				"value": valueTree(entry.Value),
			}
		}
		return map[string]any{
			"key_type":   v.KeyType.String(),
			"value_type": v.ValueType.String(),
			"entries":    entries,
		}
	case *thrift.Set:
		return sequenceValue(v.ElemType, v.Elements)
	case *thrift.List:
		return sequenceValue(v.ElemType, v.Elements)
	}
	return scalarValue(value)
}

func sequenceValue(elemType thrift.TypeID, elements []thrift.Value) any {
	values := make([]any, len(elements))
	for index, element := range elements {
		values[index] = valueTree(element)
	}
	return map[string]any{
		"elem_type": elemType.String(),
		"elements":  values,
	}
}

// scalarValue maps scalar wire values onto display-friendly Go values.
// Binaries render as text when valid UTF-8, hex otherwise.
func scalarValue(value thrift.Value) any {
	switch v := value.(type) {
	case thrift.Bool:
		return bool(v)
	case thrift.Byte:
		return fmt.Sprintf("0x%02x", byte(v))
	case thrift.I8:
		return int64(v)
	case thrift.I16:
		return int64(v)
	case thrift.I32:
		return int64(v)
	case thrift.I64:
		return int64(v)
	case thrift.U64:
		return uint64(v)
	case thrift.Double:
		return float64(v)
	case thrift.Binary:
		if utf8.Valid(v) {
			return string(v)
		}
		return "0x" + hex.EncodeToString(v)
	case thrift.Void:
		return nil
	}
	return fmt.Sprintf("%v", value)
}

// termNotation renders a term in conventional notation: binaries as
// <<"...">>, atoms bare, strings quoted, tuples in braces, records as
// #name{field=value}.
func termNotation(t term.Term) string {
	switch v := t.(type) {
	case term.Binary:
		if utf8.Valid(v) {
			return fmt.Sprintf("<<%q>>", string(v))
		}
		return "<<0x" + hex.EncodeToString(v) + ">>"
	case term.Integer:
		return fmt.Sprintf("%d", int64(v))
	case term.Float:
		return fmt.Sprintf("%g", float64(v))
	case term.Bool:
		return fmt.Sprintf("%t", bool(v))
	case term.Atom:
		return string(v)
	case term.String:
		return fmt.Sprintf("%q", string(v))
	case term.List:
		return "[" + joinTerms(v) + "]"
	case term.Tuple:
		return "{" + joinTerms(v) + "}"
	case term.PropList:
		parts := make([]string, len(v))
		for index, pair := range v {
			parts[index] = "{" + termNotation(pair.Key) + "," + termNotation(pair.Value) + "}"
		}
		return "[" + strings.Join(parts, ",") + "]"
	case term.Record:
		parts := make([]string, len(v.Fields))
		for index, field := range v.Fields {
			parts[index] = termNotation(field)
		}
		return "#" + string(v.Name) + "{" + strings.Join(parts, ",") + "}"
	}
	return fmt.Sprintf("%v", t)
}

func joinTerms(terms []term.Term) string {
	parts := make([]string, len(terms))
	for index, element := range terms {
		parts[index] = termNotation(element)
	}
	return strings.Join(parts, ",")
}

// quoteName renders a message name, showing an empty name as "".
func quoteName(name string) string {
	if name == "" {
		return `""`
	}
	return name
}
