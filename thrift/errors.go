// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package thrift

import (
	"errors"
	"fmt"
)

// Decode error stages. Each names the construct being parsed when the
// error was detected.
const (
	StageMessage = "message"
	StageStruct  = "struct"
	StageFields  = "fields"
	StageMap     = "map"
	StageSet     = "set"
	StageList    = "list"
	StageBinary  = "binary"
	StageBool    = "bool"
)

// DecodeError is a fatal decoder error. Callers can use errors.As to
// extract the structured information:
//
//	var decodeErr *thrift.DecodeError
//	if errors.As(err, &decodeErr) {
//	    if decodeErr.Stage == thrift.StageBool { ... }
//	}
//
// A decode error is sticky: once a Decoder has returned one, every
// later Feed returns the same error and no message is ever produced.
type DecodeError struct {
	// Stage is the construct being parsed: one of the Stage* constants.
	Stage string

	// Field names the specific item within the stage, e.g. "field-type",
	// "map-key-type", "list-size", "method-name", "value".
	Field string

	// Value is the offending wire value (a tag byte, a negative length,
	// an invalid bool byte, ...).
	Value any

	// State is a snapshot of the decoder state at the point of failure:
	// frame depth, current frame kind, and buffered byte count.
	State string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("thrift: decode %s/%s: bad value %v (%s)", e.Stage, e.Field, e.Value, e.State)
}

// ErrTruncated is returned by the single-shot DecodeMessage when the
// input ends before a complete message. The incremental Feed API never
// returns it: truncation there is a continuation, not an error.
var ErrTruncated = errors.New("thrift: truncated message")

// ErrDecoderDone is returned by Feed after the Decoder has already
// delivered its message. A Decoder decodes exactly one message; start
// a new one (seeded with the previous Remainder) for the next.
var ErrDecoderDone = errors.New("thrift: decoder already delivered its message")
