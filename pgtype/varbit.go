package pgtype

import (
	"fmt"

	"github.com/nxpg/pgproto/pgerr"
	"github.com/nxpg/pgproto/wire"
)

// VarBit is a variable-length bit string view: a bit count plus the
// raw bytes backing it. Bytes is borrowed from the buffer it was
// decoded from.
type VarBit struct {
	bitLen int32
	bytes  []byte
}

// Len reports the bit length (not the byte length of the backing
// slice, which is ceil(Len()/8)).
func (v VarBit) Len() int32 { return v.bitLen }

// Bytes returns the raw packed bits.
func (v VarBit) Bytes() []byte { return v.bytes }

// DecodeVarBit decodes a signed 32-bit bit-length followed by
// ceil(bitLen/8) raw bytes.
func DecodeVarBit(buf []byte) (VarBit, error) {
	r := wire.NewReader(buf)
	bitLen, err := r.ReadInt32()
	if err != nil {
		return VarBit{}, fmt.Errorf("%w (varbit length)", err)
	}
	if bitLen < 0 {
		return VarBit{}, fmt.Errorf("%w: negative varbit length %d", pgerr.ErrInvalidMessageLength, bitLen)
	}
	wantBytes := (int(bitLen) + 7) / 8
	rest := r.Rest()
	if len(rest) != wantBytes {
		return VarBit{}, fmt.Errorf("%w: varbit declares %d bits (%d bytes), got %d trailing bytes",
			pgerr.ErrInvalidBufferSize, bitLen, wantBytes, len(rest))
	}
	return VarBit{bitLen: bitLen, bytes: rest}, nil
}

// EncodeVarBit appends v's bit-length header followed by its packed
// bytes. The caller must ensure len(bits) == ceil(bitLen/8).
func EncodeVarBit(dst []byte, bitLen int32, bits []byte) []byte {
	dst = wire.AppendInt32(dst, bitLen)
	return wire.AppendBytes(dst, bits)
}
