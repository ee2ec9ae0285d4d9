// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package thrift

import (
	"encoding/binary"
	"math"
)

// Primitive append codecs. All multi-byte values are big-endian, per
// the Thrift Binary Protocol.

func appendByte(buffer []byte, v byte) []byte {
	return append(buffer, v)
}

func appendBool(buffer []byte, v bool) []byte {
	if v {
		return append(buffer, 0x01)
	}
	return append(buffer, 0x00)
}

func appendI16(buffer []byte, v int16) []byte {
	return binary.BigEndian.AppendUint16(buffer, uint16(v))
}

func appendI32(buffer []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(buffer, uint32(v))
}

func appendU32(buffer []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buffer, v)
}

func appendI64(buffer []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(buffer, uint64(v))
}

func appendU64(buffer []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buffer, v)
}

func appendDouble(buffer []byte, v float64) []byte {
	return binary.BigEndian.AppendUint64(buffer, math.Float64bits(v))
}

// Primitive take codecs. Each attempts to read one scalar from the
// front of buffer and reports (value, bytesConsumed, ok). ok is false
// when the buffer holds fewer bytes than the scalar needs; the caller
// retries with an extended buffer, which is what makes the decoder
// resumable at arbitrary byte boundaries. A take never consumes
// partially: it is all-or-nothing against the buffer.

func takeByte(buffer []byte) (byte, int, bool) {
	if len(buffer) < 1 {
		return 0, 0, false
	}
	return buffer[0], 1, true
}

func takeI16(buffer []byte) (int16, int, bool) {
	if len(buffer) < 2 {
		return 0, 0, false
	}
	return int16(binary.BigEndian.Uint16(buffer)), 2, true
}

func takeI32(buffer []byte) (int32, int, bool) {
	if len(buffer) < 4 {
		return 0, 0, false
	}
	return int32(binary.BigEndian.Uint32(buffer)), 4, true
}

func takeU32(buffer []byte) (uint32, int, bool) {
	if len(buffer) < 4 {
		return 0, 0, false
	}
	return binary.BigEndian.Uint32(buffer), 4, true
}

func takeI64(buffer []byte) (int64, int, bool) {
	if len(buffer) < 8 {
		return 0, 0, false
	}
	return int64(binary.BigEndian.Uint64(buffer)), 8, true
}

func takeU64(buffer []byte) (uint64, int, bool) {
	if len(buffer) < 8 {
		return 0, 0, false
	}
	return binary.BigEndian.Uint64(buffer), 8, true
}

func takeDouble(buffer []byte) (float64, int, bool) {
	if len(buffer) < 8 {
		return 0, 0, false
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buffer)), 8, true
}
