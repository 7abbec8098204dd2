package pgtype

// DecodeBytea is the identity decode: bytea carries opaque bytes with
// no further validation. Returned as a view into buf; copy it if it
// must outlive the caller's input.
func DecodeBytea(buf []byte) ([]byte, error) {
	return buf, nil
}

// EncodeBytea appends v's raw bytes with no framing.
func EncodeBytea(dst []byte, v []byte) []byte {
	return append(dst, v...)
}
