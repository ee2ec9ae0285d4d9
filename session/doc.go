// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

// Package session decides how values cross the codec boundary for one
// connection. A per-session role — client or server, framed or
// unframed — is explicit configuration on the Codec rather than
// ambient state.
//
// Outbound, a raw *thrift.Message passes through untouched; a term
// wraps into a "$UBF" message (CALL from clients, REPLY from servers,
// sequence id 0); an Event wraps as ONEWAY. Inbound, a message named
// "$UBF" unwraps through the term bridge and is delivered as a term
// or an event according to its message type; any other message is
// delivered as-is.
//
// Replies carry only the reply value. The Thrift protocol has no slot
// for the server-side logical state the term runtime tracks, so this
// codec always runs in simple RPC mode.
//
// The framed role variant adds an outer 32-bit big-endian length
// prefix per message. That layer is mechanical and lives in the
// transport driver; WriteFrame and ReadFrame implement it next to the
// codec, but the codec itself never depends on framing.
package session
