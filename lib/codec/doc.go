// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration for
// the project's tooling output.
//
// The wire protocol itself is Thrift Binary (see the thrift package);
// CBOR is the machine-readable interchange format the inspector tool
// emits so decoded messages can be piped into CBOR-aware tooling. The
// encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes, so tool output is
// diffable.
package codec
