package pgtype

import (
	"encoding/binary"
	"fmt"

	"github.com/nxpg/pgproto/pgerr"
)

// Oid names a type, table, or column (spec.md §3).
type Oid uint32

// DecodeOid decodes a 4-byte big-endian object identifier.
func DecodeOid(buf []byte) (Oid, error) {
	if len(buf) != 4 {
		return 0, fmt.Errorf("%w: oid must be 4 bytes, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	return Oid(binary.BigEndian.Uint32(buf)), nil
}

// EncodeOid appends a 4-byte big-endian object identifier.
func EncodeOid(dst []byte, v Oid) []byte {
	return binary.BigEndian.AppendUint32(dst, uint32(v))
}
