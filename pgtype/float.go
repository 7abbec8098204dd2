package pgtype

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/nxpg/pgproto/pgerr"
)

// DecodeFloat4 decodes a big-endian IEEE-754 single-precision float.
// Bit pattern is preserved exactly, including NaN payloads.
func DecodeFloat4(buf []byte) (float32, error) {
	if len(buf) != 4 {
		return 0, fmt.Errorf("%w: float4 must be 4 bytes, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf)), nil
}

// EncodeFloat4 appends a big-endian IEEE-754 single-precision float.
func EncodeFloat4(dst []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(dst, math.Float32bits(v))
}

// DecodeFloat8 decodes a big-endian IEEE-754 double-precision float.
func DecodeFloat8(buf []byte) (float64, error) {
	if len(buf) != 8 {
		return 0, fmt.Errorf("%w: float8 must be 8 bytes, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
}

// EncodeFloat8 appends a big-endian IEEE-754 double-precision float.
func EncodeFloat8(dst []byte, v float64) []byte {
	return binary.BigEndian.AppendUint64(dst, math.Float64bits(v))
}
