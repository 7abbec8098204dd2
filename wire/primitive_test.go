package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nxpg/pgproto/pgerr"
)

func TestReaderIntRoundTrip(t *testing.T) {
	var buf []byte
	buf = AppendUint8(buf, 0xAB)
	buf = AppendInt16(buf, -1234)
	buf = AppendUint32(buf, 0xDEADBEEF)
	buf = AppendInt64(buf, -9001)
	buf = AppendFloat64(buf, 3.5)

	r := NewReader(buf)

	u8, err := r.ReadUint8()
	if err != nil || u8 != 0xAB {
		t.Fatalf("ReadUint8: got %v, %v", u8, err)
	}
	i16, err := r.ReadInt16()
	if err != nil || i16 != -1234 {
		t.Fatalf("ReadInt16: got %v, %v", i16, err)
	}
	u32, err := r.ReadUint32()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadUint32: got %v, %v", u32, err)
	}
	i64, err := r.ReadInt64()
	if err != nil || i64 != -9001 {
		t.Fatalf("ReadInt64: got %v, %v", i64, err)
	}
	f64, err := r.ReadFloat64()
	if err != nil || f64 != 3.5 {
		t.Fatalf("ReadFloat64: got %v, %v", f64, err)
	}
	if !r.AtEnd() {
		t.Fatalf("expected reader exhausted, %d bytes remaining", r.Remaining())
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.ReadInt32(); !errors.Is(err, pgerr.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestCStringRoundTrip(t *testing.T) {
	dst, err := AppendCString(nil, "hello")
	if err != nil {
		t.Fatal(err)
	}
	dst = append(dst, 0xFF) // trailing byte that must not be consumed
	r := NewReader(dst)
	s, err := r.ReadCString()
	if err != nil || s != "hello" {
		t.Fatalf("ReadCString: got %q, %v", s, err)
	}
	if r.Remaining() != 1 {
		t.Fatalf("expected 1 trailing byte, got %d", r.Remaining())
	}
}

func TestCStringEmbeddedNul(t *testing.T) {
	if _, err := AppendCString(nil, "a\x00b"); !errors.Is(err, pgerr.ErrEmbeddedNul) {
		t.Fatalf("expected ErrEmbeddedNul, got %v", err)
	}
}

func TestCStringUnterminated(t *testing.T) {
	r := NewReader([]byte("no terminator"))
	if _, err := r.ReadCString(); !errors.Is(err, pgerr.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestPascalStringRoundTrip(t *testing.T) {
	dst, err := AppendPascalString(nil, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	r := NewReader(dst)
	got, err := r.ReadPascalString()
	if err != nil || !bytes.Equal(got, []byte("payload")) {
		t.Fatalf("ReadPascalString: got %q, %v", got, err)
	}
}

func TestFramedValueNull(t *testing.T) {
	dst, err := AppendFramedValue(nil, nil, ValueAbsent)
	if err != nil {
		t.Fatal(err)
	}
	r := NewReader(dst)
	data, null, err := r.ReadFramedValue()
	if err != nil || !null.IsNull() || data != nil {
		t.Fatalf("ReadFramedValue: got %v, %v, %v", data, null, err)
	}
}

func TestFramedValuePresent(t *testing.T) {
	dst, err := AppendFramedValue(nil, []byte("A"), ValuePresent)
	if err != nil {
		t.Fatal(err)
	}
	r := NewReader(dst)
	data, null, err := r.ReadFramedValue()
	if err != nil || null.IsNull() || !bytes.Equal(data, []byte("A")) {
		t.Fatalf("ReadFramedValue: got %v, %v, %v", data, null, err)
	}
}

func TestWriteFramed(t *testing.T) {
	dst, err := WriteFramed(nil, func(dst []byte) ([]byte, error) {
		return append(dst, "abc"...), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	// length field = len(body) + 4 = 3 + 4 = 7
	want := []byte{0, 0, 0, 7, 'a', 'b', 'c'}
	if !bytes.Equal(dst, want) {
		t.Fatalf("WriteFramed: got %v, want %v", dst, want)
	}
}

func TestInt32FromLenOverflow(t *testing.T) {
	if _, err := Int32FromLen(1 << 32); !errors.Is(err, pgerr.ErrValueTooLarge) {
		t.Fatalf("expected ErrValueTooLarge, got %v", err)
	}
}
