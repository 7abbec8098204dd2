// Package pgtype implements the binary value codec (component B): one
// encoder and one decoder per common column type, built atop wire's
// primitive reader/writer. Decoders validate exact buffer length;
// encoders append to a caller-owned buffer.
package pgtype

import (
	"fmt"

	"github.com/nxpg/pgproto/pgerr"
)

// DecodeBool decodes a single-byte boolean: 0 is false, any other byte
// is true.
func DecodeBool(buf []byte) (bool, error) {
	if len(buf) != 1 {
		return false, fmt.Errorf("%w: bool must be 1 byte, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	return buf[0] != 0, nil
}

// EncodeBool appends the single-byte boolean encoding.
func EncodeBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}
