// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the codec packages.
//
// [Hex] parses whitespace-separated hex strings into byte slices, so
// wire fixtures in tests can be written the way protocol documents
// print them ("80 01 00 02 ...").
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no codec-internal dependencies.
package testutil
