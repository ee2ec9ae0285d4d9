// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/hex"
	"strings"
	"testing"
)

// Hex decodes a hex string into bytes, ignoring all whitespace. Wire
// fixtures read the way protocol documents print them:
//
//	input := testutil.Hex(t, "80 01 00 02  00 00 00 00")
//
// Fails the test on malformed hex.
func Hex(t *testing.T, s string) []byte {
	t.Helper()
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
	data, err := hex.DecodeString(compact)
	if err != nil {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	return data
}
