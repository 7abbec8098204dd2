package pgtype

import (
	"testing"

	"github.com/nxpg/pgproto/wire"
)

func TestHstoreRoundTrip(t *testing.T) {
	source := []HstoreEntry{
		{Key: "hello", Value: "world", Null: wire.ValuePresent},
		{Key: "hola", Null: wire.ValueAbsent},
	}
	encoders := make([]HstoreEntryEncoder, len(source))
	for i, e := range source {
		e := e
		encoders[i] = func() (string, string, wire.NullFlag, error) {
			return e.Key, e.Value, e.Null, nil
		}
	}

	buf, err := EncodeHstore(nil, encoders)
	if err != nil {
		t.Fatal(err)
	}

	it, err := DecodeHstore(buf)
	if err != nil {
		t.Fatal(err)
	}
	var got []HstoreEntry
	for it.Next() {
		got = append(got, it.Value())
	}
	if it.Err() != nil {
		t.Fatal(it.Err())
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0] != source[0] {
		t.Fatalf("entry 0: got %+v, want %+v", got[0], source[0])
	}
	if got[1].Key != "hola" || !got[1].Null.IsNull() {
		t.Fatalf("entry 1: got %+v", got[1])
	}
}

func TestHstoreNegativeEntryCountRejected(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF} // -1 as i32
	if _, err := DecodeHstore(buf); err == nil {
		t.Fatal("expected error for negative entry count")
	}
}

func TestHstoreNegativeKeyLengthRejected(t *testing.T) {
	var buf []byte
	buf = wire.AppendInt32(buf, 1) // 1 entry
	buf = wire.AppendInt32(buf, -2) // invalid key length (only -1 is meaningful, and that's reserved for values)
	it, err := DecodeHstore(buf)
	if err != nil {
		t.Fatal(err)
	}
	if it.Next() {
		t.Fatal("expected Next to fail on negative key length")
	}
	if it.Err() == nil {
		t.Fatal("expected InvalidKeyLength error")
	}
}

func TestHstoreTrailingBytesRejected(t *testing.T) {
	var buf []byte
	buf = wire.AppendInt32(buf, 0) // declares 0 entries
	buf = append(buf, 0xAB)        // but one extra trailing byte
	it, err := DecodeHstore(buf)
	if err != nil {
		t.Fatal(err)
	}
	if it.Next() {
		t.Fatal("expected no entries")
	}
	if it.Err() == nil {
		t.Fatal("expected trailing-bytes error")
	}
}
