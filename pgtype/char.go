package pgtype

import (
	"fmt"

	"github.com/nxpg/pgproto/pgerr"
)

// DecodeChar decodes the single-byte "char" type (a raw signed byte,
// distinct from a one-character text value).
func DecodeChar(buf []byte) (int8, error) {
	if len(buf) != 1 {
		return 0, fmt.Errorf("%w: char must be 1 byte, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	return int8(buf[0]), nil
}

// EncodeChar appends the single raw byte.
func EncodeChar(dst []byte, v int8) []byte {
	return append(dst, byte(v))
}
