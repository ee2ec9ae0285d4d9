// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/hibari/ubf-thrift/lib/testutil"
	"github.com/hibari/ubf-thrift/term"
)

func TestFrameRoundTrip(t *testing.T) {
	t.Parallel()
	codec := &Codec{}
	encoded, err := codec.Encode(term.List{term.Integer(1), term.Binary("x")})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := flatten(encoded)

	var buffer bytes.Buffer
	if err := WriteFrame(&buffer, encoded); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	payload, err := ReadFrame(&buffer, 0)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(payload, want) {
		t.Errorf("payload: got %x, want %x", payload, want)
	}
}

func TestFrameOverPipe(t *testing.T) {
	t.Parallel()
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sender := &Codec{}
	encoded, err := sender.Encode(term.Integer(7))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	frames := make(chan []byte, 1)
	go func() {
		payload, readErr := ReadFrame(server, 0)
		if readErr != nil {
			close(frames)
			return
		}
		frames <- payload
	}()

	if err := WriteFrame(client, encoded); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	payload := testutil.RequireReceive(t, frames, 5*time.Second, "waiting for frame")

	receiver := &Codec{Role: Role{Side: Server}}
	inbound, err := receiver.Feed(payload)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if inbound == nil || !term.Equal(inbound.Term, term.Integer(7)) {
		t.Errorf("inbound: got %+v, want Integer(7)", inbound)
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	buffer.Write([]byte{0x00, 0x00, 0x10, 0x00}) // 4096-byte frame

	if _, err := ReadFrame(&buffer, 16); err == nil {
		t.Error("expected error for oversized frame")
	}
}

func TestReadFrameEmptyPayload(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	buffer.Write([]byte{0x00, 0x00, 0x00, 0x00})

	payload, err := ReadFrame(&buffer, 0)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(payload) != 0 {
		t.Errorf("payload: got %d bytes, want none", len(payload))
	}
}
