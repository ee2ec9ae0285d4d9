// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge maps the term algebra onto Thrift structs and back.
//
// Each term variant encodes as a struct whose name is a reserved
// two-character sentinel ("$B", "$N", ...) holding exactly one field
// with id 1 and an empty field name. The mapping is total over the
// term algebra. Distinct terms encode to distinct structs, except that
// a record with no registry schema encodes as its tuple form and is
// then indistinguishable from that tuple. Structs not bearing a
// sentinel name are outside the
// mapping and pass through the codec untouched.
//
// The Thrift Binary Protocol never serializes struct names, so the
// sentinel survives only in memory. Decode therefore has two entry
// points: Decode matches the sentinel name exactly and recovers every
// variant, while DecodeWire reconstructs the variant from the
// envelope shape for trees that crossed the wire and lost their
// names. Shape is unambiguous for numbers, booleans, proplists, and
// records; for the remaining envelopes DecodeWire resolves to the
// wider variant (Binary rather than Atom or String, List rather than
// Tuple). This narrowing is inherent to the wire format and mirrors
// the protocol's declared simple-RPC asymmetry.
package bridge
