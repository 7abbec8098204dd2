// Package wire implements the primitive codec shared by pgproto and
// pgtype: fixed-width big-endian integers and floats, c-strings, and
// length-prefixed ("pascal") byte runs, all read against a borrowed
// byte slice and appended to a caller-owned growable buffer. A Reader
// keeps a reference to its input slice, and ReadBytes, Rest and
// ReadFramedValue return views into it. ReadCString is the one read
// that allocates: it copies its payload into a new Go string.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/nxpg/pgproto/pgerr"
)

// Int32FromLen converts a byte count to the wire's signed 32-bit length
// field, failing ErrValueTooLarge when n would not fit.
func Int32FromLen(n int) (int32, error) {
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: length %d exceeds int32", pgerr.ErrValueTooLarge, n)
	}
	return int32(n), nil
}

// Int16FromLen converts a count to the wire's signed 16-bit count field,
// failing ErrValueTooLarge when n would not fit.
func Int16FromLen(n int) (int16, error) {
	if n > math.MaxInt16 {
		return 0, fmt.Errorf("%w: count %d exceeds int16", pgerr.ErrValueTooLarge, n)
	}
	return int16(n), nil
}

// Reader is a forward-only cursor over a borrowed byte slice. It never
// copies the slice and never reads past its end.
type Reader struct {
	buf []byte
	pos int
}

// NewReader constructs a Reader over buf starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Rest returns the unread tail of the buffer without advancing.
func (r *Reader) Rest() []byte { return r.buf[r.pos:] }

// AtEnd reports whether every byte has been consumed.
func (r *Reader) AtEnd() bool { return r.pos >= len(r.buf) }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return pgerr.ErrUnexpectedEOF
	}
	return nil
}

// ReadUint8 reads one unsigned byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadInt8 reads one signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadUint16 reads a big-endian unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadInt16 reads a big-endian signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a big-endian unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadInt32 reads a big-endian signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a big-endian unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadInt64 reads a big-endian signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads a big-endian IEEE-754 single-precision float.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads a big-endian IEEE-754 double-precision float.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadBytes reads and returns (a view of) the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, pgerr.ErrUnexpectedEOF
	}
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// ReadCString reads a zero-terminated byte run, rejecting interior zero
// bytes (there are none by construction: the scan stops at the first
// zero) and validating the payload as UTF-8. It advances past the
// terminator.
func (r *Reader) ReadCString() (string, error) {
	rest := r.buf[r.pos:]
	idx := -1
	for i, b := range rest {
		if b == 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", pgerr.ErrUnexpectedEOF
	}
	payload := rest[:idx]
	if !utf8.Valid(payload) {
		return "", pgerr.ErrInvalidUTF8
	}
	r.pos += idx + 1
	return string(payload), nil
}

// ReadPascalString reads a signed 32-bit length followed by exactly that
// many raw bytes. The length must be non-negative; negative lengths are
// a NULL-flag concept belonging to the value codec, not this primitive.
func (r *Reader) ReadPascalString() ([]byte, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative pascal string length %d", pgerr.ErrInvalidMessageLength, n)
	}
	return r.ReadBytes(int(n))
}

// ReadFramedValue reads the {i32 length, length bytes} shape used for
// DataRow/Bind values and array/hstore elements, where length == -1
// signals NULL.
func (r *Reader) ReadFramedValue() (data []byte, null NullFlag, err error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, ValuePresent, err
	}
	if n == -1 {
		return nil, ValueAbsent, nil
	}
	if n < -1 {
		return nil, ValuePresent, fmt.Errorf("%w: negative value length %d", pgerr.ErrInvalidMessageLength, n)
	}
	data, err = r.ReadBytes(int(n))
	return data, ValuePresent, err
}

// --- Append-based writers ---
//
// Each Append* function appends to dst and returns the grown slice, the
// same shape the teacher's Buffer.Write* methods use, but as free
// functions so callers choose their own buffer rather than a single
// stateful type mixing read and write state.

// AppendUint8 appends one unsigned byte.
func AppendUint8(dst []byte, v uint8) []byte { return append(dst, v) }

// AppendInt8 appends one signed byte.
func AppendInt8(dst []byte, v int8) []byte { return append(dst, byte(v)) }

// AppendUint16 appends a big-endian unsigned 16-bit integer.
func AppendUint16(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

// AppendInt16 appends a big-endian signed 16-bit integer.
func AppendInt16(dst []byte, v int16) []byte { return AppendUint16(dst, uint16(v)) }

// AppendUint32 appends a big-endian unsigned 32-bit integer.
func AppendUint32(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// AppendInt32 appends a big-endian signed 32-bit integer.
func AppendInt32(dst []byte, v int32) []byte { return AppendUint32(dst, uint32(v)) }

// AppendUint64 appends a big-endian unsigned 64-bit integer.
func AppendUint64(dst []byte, v uint64) []byte {
	return append(dst,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// AppendInt64 appends a big-endian signed 64-bit integer.
func AppendInt64(dst []byte, v int64) []byte { return AppendUint64(dst, uint64(v)) }

// AppendFloat32 appends a big-endian IEEE-754 single-precision float.
func AppendFloat32(dst []byte, v float32) []byte {
	return AppendUint32(dst, math.Float32bits(v))
}

// AppendFloat64 appends a big-endian IEEE-754 double-precision float.
func AppendFloat64(dst []byte, v float64) []byte {
	return AppendUint64(dst, math.Float64bits(v))
}

// AppendBytes appends raw bytes with no framing.
func AppendBytes(dst []byte, b []byte) []byte { return append(dst, b...) }

// AppendCString appends s followed by a zero terminator, failing
// ErrEmbeddedNul if s itself contains a zero byte.
func AppendCString(dst []byte, s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return dst, pgerr.ErrEmbeddedNul
		}
	}
	dst = append(dst, s...)
	return append(dst, 0), nil
}

// AppendPascalString appends a signed 32-bit length followed by b.
func AppendPascalString(dst []byte, b []byte) ([]byte, error) {
	n, err := Int32FromLen(len(b))
	if err != nil {
		return dst, err
	}
	dst = AppendInt32(dst, n)
	return AppendBytes(dst, b), nil
}

// AppendFramedValue appends the {i32 length, length bytes} shape, or a
// bare length of -1 when null is ValueAbsent.
func AppendFramedValue(dst []byte, data []byte, null NullFlag) ([]byte, error) {
	if null.IsNull() {
		return AppendInt32(dst, -1), nil
	}
	return AppendPascalString(dst, data)
}

// WriteFramed reserves a 4-byte length placeholder, invokes body to
// append the message body, then backpatches the placeholder with
// len(body)+4 (the length field counts itself). This is the framing
// primitive every length-prefixed frontend/backend message and the
// auth/startup special cases build on.
func WriteFramed(dst []byte, body func(dst []byte) ([]byte, error)) ([]byte, error) {
	lenPos := len(dst)
	dst = append(dst, 0, 0, 0, 0)
	bodyStart := len(dst)

	dst, err := body(dst)
	if err != nil {
		return dst, err
	}

	total, err := Int32FromLen(len(dst) - bodyStart + 4)
	if err != nil {
		return dst, err
	}
	binary.BigEndian.PutUint32(dst[lenPos:lenPos+4], uint32(total))
	return dst, nil
}
