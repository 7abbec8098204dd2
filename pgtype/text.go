package pgtype

import (
	"unicode/utf8"

	"github.com/nxpg/pgproto/pgerr"
)

// DecodeText validates buf as UTF-8 and returns it as a string. Used
// for text and its aliases (varchar, bpchar, name, citext): all share
// the same wire representation and differ only in server-side
// semantics the codec doesn't model.
func DecodeText(buf []byte) (string, error) {
	if !utf8.Valid(buf) {
		return "", pgerr.ErrInvalidUTF8
	}
	return string(buf), nil
}

// EncodeText appends s's raw UTF-8 bytes with no framing or
// validation; the caller is responsible for ensuring s is valid
// text before it reaches the wire.
func EncodeText(dst []byte, s string) []byte {
	return append(dst, s...)
}
