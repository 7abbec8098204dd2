package pgtype

import (
	"fmt"

	"github.com/nxpg/pgproto/pgerr"
)

// MacAddr is a 6-byte hardware address.
type MacAddr [6]byte

// DecodeMacAddr decodes exactly 6 raw bytes.
func DecodeMacAddr(buf []byte) (MacAddr, error) {
	if len(buf) != 6 {
		return MacAddr{}, fmt.Errorf("%w: macaddr must be 6 bytes, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	var v MacAddr
	copy(v[:], buf)
	return v, nil
}

// EncodeMacAddr appends the 6 raw address bytes.
func EncodeMacAddr(dst []byte, v MacAddr) []byte {
	return append(dst, v[:]...)
}

func (v MacAddr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", v[0], v[1], v[2], v[3], v[4], v[5])
}
