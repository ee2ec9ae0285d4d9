// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// frameHeaderLength is the fixed size of a frame header: a 32-bit
// big-endian payload length.
const frameHeaderLength = 4

// DefaultMaxFrameSize bounds inbound frames. A frame carries one
// message, so this is effectively a message size cap for framed
// sessions.
const DefaultMaxFrameSize = 16 * 1024 * 1024

// WriteFrame writes one length-prefixed message to w: a 32-bit
// big-endian length followed by the gathered message bytes.
func WriteFrame(w io.Writer, buffers net.Buffers) error {
	var total int64
	for _, buffer := range buffers {
		total += int64(len(buffer))
	}
	if total > DefaultMaxFrameSize {
		return fmt.Errorf("session: frame length %d exceeds maximum %d", total, DefaultMaxFrameSize)
	}

	var header [frameHeaderLength]byte
	binary.BigEndian.PutUint32(header[:], uint32(total))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := buffers.WriteTo(w); err != nil {
		return fmt.Errorf("write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed message from r. maxSize bounds
// the declared payload length; zero selects DefaultMaxFrameSize.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	if maxSize == 0 {
		maxSize = DefaultMaxFrameSize
	}

	var header [frameHeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	length := binary.BigEndian.Uint32(header[:])
	if int64(length) > int64(maxSize) {
		return nil, fmt.Errorf("session: frame length %d exceeds maximum %d", length, maxSize)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("read frame payload: %w", err)
		}
	}
	return payload, nil
}
