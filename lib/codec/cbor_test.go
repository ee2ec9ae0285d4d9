// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	t.Parallel()
	value := map[string]any{"zebra": 1, "alpha": 2, "mid": 3}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("same value produced different bytes")
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	t.Parallel()
	value := map[string]any{"name": "call", "seqid": int64(7)}

	data, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["name"] != "call" {
		t.Errorf("name: got %v", decoded["name"])
	}
}

func TestEncoderWritesSequence(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, item := range []int{1, 2, 3} {
		if err := encoder.Encode(item); err != nil {
			t.Fatalf("Encode(%d): %v", item, err)
		}
	}
	if got := buffer.Bytes(); !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("sequence: got %x", got)
	}
}

func TestDiagnose(t *testing.T) {
	t.Parallel()
	data, err := Marshal(map[string]any{"ok": true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, `"ok"`) {
		t.Errorf("diagnostic %q does not mention the key", diagnostic)
	}
}
