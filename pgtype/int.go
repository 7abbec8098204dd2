package pgtype

import (
	"encoding/binary"
	"fmt"

	"github.com/nxpg/pgproto/pgerr"
)

// DecodeInt2 decodes a big-endian signed 16-bit integer.
func DecodeInt2(buf []byte) (int16, error) {
	if len(buf) != 2 {
		return 0, fmt.Errorf("%w: int2 must be 2 bytes, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	return int16(binary.BigEndian.Uint16(buf)), nil
}

// EncodeInt2 appends a big-endian signed 16-bit integer.
func EncodeInt2(dst []byte, v int16) []byte {
	return binary.BigEndian.AppendUint16(dst, uint16(v))
}

// DecodeInt4 decodes a big-endian signed 32-bit integer.
func DecodeInt4(buf []byte) (int32, error) {
	if len(buf) != 4 {
		return 0, fmt.Errorf("%w: int4 must be 4 bytes, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	return int32(binary.BigEndian.Uint32(buf)), nil
}

// EncodeInt4 appends a big-endian signed 32-bit integer.
func EncodeInt4(dst []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(dst, uint32(v))
}

// DecodeInt8 decodes a big-endian signed 64-bit integer.
func DecodeInt8(buf []byte) (int64, error) {
	if len(buf) != 8 {
		return 0, fmt.Errorf("%w: int8 must be 8 bytes, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	return int64(binary.BigEndian.Uint64(buf)), nil
}

// EncodeInt8 appends a big-endian signed 64-bit integer.
func EncodeInt8(dst []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(v))
}
