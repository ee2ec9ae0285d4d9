// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

// Package thrift implements the Thrift Binary Protocol: an in-memory
// value model for Thrift messages, a non-resumable encoder producing
// gathered byte slices, and a resumable incremental decoder that
// consumes bytes as they arrive from a transport.
//
// The package is organized around the codec data flow:
//
//   - types.go: the wire-level value model (Message, Struct, Field,
//     containers, scalars) and the type-tag and message-type enums
//   - primitive.go: big-endian scalar and length-prefixed binary codecs
//   - encode.go: message and value encoding to net.Buffers
//   - decode.go: the resumable decoder (explicit frame stack, no
//     wire-depth recursion)
//   - errors.go: the structured decode error taxonomy
//
// The decoder is a push parser: the caller feeds byte chunks in
// arbitrary sizes and receives either a complete message plus any
// trailing remainder, an error, or nothing (meaning more input is
// required). Feeding a stream chunk by chunk yields exactly the same
// result as feeding it in a single call. A Decoder is single-owner:
// callers must not feed the same Decoder from two goroutines.
//
// Struct and field names exist only in memory — the Thrift Binary
// Protocol never serializes them. They are carried so that higher
// layers (the term bridge) can round-trip named structures.
package thrift
