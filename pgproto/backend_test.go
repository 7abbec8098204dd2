package pgproto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/nxpg/pgproto/pgerr"
)

func TestParseIncompleteShortHeader(t *testing.T) {
	out, err := Parse([]byte{'Z', 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if out.Complete() {
		t.Fatal("expected incomplete outcome")
	}
	if out.NeedAtLeast != 0 {
		t.Fatalf("required length should be unknown with <5 header bytes, got %d", out.NeedAtLeast)
	}
}

func TestParseReadyForQuery(t *testing.T) {
	buf := []byte{0x5A, 0x00, 0x00, 0x00, 0x05, 0x49}
	out, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Complete() {
		t.Fatal("expected complete outcome")
	}
	if out.Consumed != 6 {
		t.Fatalf("consumed: got %d, want 6", out.Consumed)
	}
	rfq, ok := out.Message.(ReadyForQuery)
	if !ok {
		t.Fatalf("expected ReadyForQuery, got %T", out.Message)
	}
	if rfq.TxStatus != 'I' {
		t.Fatalf("TxStatus: got %q, want 'I'", rfq.TxStatus)
	}
}

func TestParseBackendKeyData(t *testing.T) {
	buf := []byte{0x4B, 0x00, 0x00, 0x00, 0x0C, 0x00, 0x00, 0x00, 0x2A, 0x00, 0x00, 0x04, 0xD2}
	out, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	bkd, ok := out.Message.(BackendKeyData)
	if !ok {
		t.Fatalf("expected BackendKeyData, got %T", out.Message)
	}
	if bkd.ProcessID != 42 || bkd.SecretKey != 1234 {
		t.Fatalf("got pid=%d key=%d, want pid=42 key=1234", bkd.ProcessID, bkd.SecretKey)
	}
	if out.Consumed != len(buf) {
		t.Fatalf("consumed: got %d, want %d", out.Consumed, len(buf))
	}
}

func TestParseDataRow(t *testing.T) {
	buf := []byte{
		0x44, 0x00, 0x00, 0x00, 0x0F, 0x00, 0x02,
		0xFF, 0xFF, 0xFF, 0xFF, // NULL
		0x00, 0x00, 0x00, 0x01, 'A',
	}
	out, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	row, ok := out.Message.(DataRow)
	if !ok {
		t.Fatalf("expected DataRow, got %T", out.Message)
	}

	it := row.Values()
	if !it.Next() {
		t.Fatalf("expected a first value, err=%v", it.Err())
	}
	data, null := it.Value()
	if !null.IsNull() || data != nil {
		t.Fatalf("first value should be NULL, got %v null=%v", data, null)
	}
	if !it.Next() {
		t.Fatalf("expected a second value, err=%v", it.Err())
	}
	data, null = it.Value()
	if null.IsNull() || !bytes.Equal(data, []byte("A")) {
		t.Fatalf("second value should be %q, got %q null=%v", "A", data, null)
	}
	if it.Next() {
		t.Fatal("expected iterator to stop after 2 values")
	}
	if it.Err() != nil {
		t.Fatalf("unexpected iterator error: %v", it.Err())
	}
}

func TestParseErrorResponseFields(t *testing.T) {
	var body []byte
	body = append(body, 'S')
	body = append(body, "ERROR\x00"...)
	body = append(body, 'C')
	body = append(body, "42P01\x00"...)
	body = append(body, 0) // terminator

	buf := make([]byte, 5, 5+len(body))
	buf[0] = 'E'
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(body)+4))
	buf = append(buf, body...)

	out, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	errResp, ok := out.Message.(ErrorResponse)
	if !ok {
		t.Fatalf("expected ErrorResponse, got %T", out.Message)
	}
	it := errResp.Fields()
	var got []ErrorField
	for it.Next() {
		got = append(got, it.Value())
	}
	if it.Err() != nil {
		t.Fatal(it.Err())
	}
	want := []ErrorField{{Code: 'S', Value: "ERROR"}, {Code: 'C', Value: "42P01"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseAuthenticationMd5Password(t *testing.T) {
	buf := []byte{'R', 0, 0, 0, 12, 0, 0, 0, 5, 0xAA, 0xBB, 0xCC, 0xDD}
	out, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	auth, ok := out.Message.(AuthenticationMd5Password)
	if !ok {
		t.Fatalf("expected AuthenticationMd5Password, got %T", out.Message)
	}
	want := [4]byte{0xAA, 0xBB, 0xCC, 0xDD}
	if auth.Salt != want {
		t.Fatalf("salt: got %v, want %v", auth.Salt, want)
	}
}

func TestParseUnknownTag(t *testing.T) {
	buf := []byte{'?', 0, 0, 0, 4}
	_, err := Parse(buf)
	if !errors.Is(err, pgerr.ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestParseUnknownAuthSubcode(t *testing.T) {
	buf := []byte{'R', 0, 0, 0, 8, 0, 0, 0, 99}
	_, err := Parse(buf)
	if !errors.Is(err, pgerr.ErrUnknownAuthSubcode) {
		t.Fatalf("expected ErrUnknownAuthSubcode, got %v", err)
	}
}

func TestParseIncompleteKnownLength(t *testing.T) {
	full := []byte{0x5A, 0x00, 0x00, 0x00, 0x05, 0x49}
	for k := 0; k < len(full); k++ {
		out, err := Parse(full[:k])
		if err != nil {
			t.Fatalf("k=%d: unexpected error %v", k, err)
		}
		if out.Complete() {
			t.Fatalf("k=%d: expected incomplete", k)
		}
		if k >= 5 && out.NeedAtLeast != len(full) {
			t.Fatalf("k=%d: NeedAtLeast = %d, want %d", k, out.NeedAtLeast, len(full))
		}
	}
	out, err := Parse(full)
	if err != nil || !out.Complete() || out.Consumed != len(full) {
		t.Fatalf("full buffer should parse completely: out=%+v err=%v", out, err)
	}
}

func TestParseCommandCompleteTrailingBytesRejected(t *testing.T) {
	// "SELECT 1\x00" + one extra trailing byte that shouldn't be there.
	body := append([]byte("SELECT 1\x00"), 'X')
	buf := []byte{'C', 0, 0, 0, byte(len(body) + 4)}
	buf = append(buf, body...)
	_, err := Parse(buf)
	if !errors.Is(err, pgerr.ErrInvalidMessageLength) {
		t.Fatalf("expected ErrInvalidMessageLength, got %v", err)
	}
}
