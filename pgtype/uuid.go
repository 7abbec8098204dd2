package pgtype

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nxpg/pgproto/pgerr"
)

// DecodeUUID decodes exactly 16 raw bytes into a uuid.UUID. The
// google/uuid type gives callers string formatting and parsing for
// free, beyond what the wire codec itself needs.
func DecodeUUID(buf []byte) (uuid.UUID, error) {
	if len(buf) != 16 {
		return uuid.UUID{}, fmt.Errorf("%w: uuid must be 16 bytes, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	var v uuid.UUID
	copy(v[:], buf)
	return v, nil
}

// EncodeUUID appends v's 16 raw bytes.
func EncodeUUID(dst []byte, v uuid.UUID) []byte {
	return append(dst, v[:]...)
}
