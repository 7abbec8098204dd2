package pgproto

import (
	"bytes"
	"testing"

	"github.com/nxpg/pgproto/wire"
)

func TestAppendQueryRoundTrip(t *testing.T) {
	dst, err := AppendQuery(nil, "SELECT 1")
	if err != nil {
		t.Fatal(err)
	}
	// Query is a frontend-only message; Parse only ever decodes backend
	// messages, so check the framing directly instead of round-tripping
	// through it.
	if dst[0] != 'Q' {
		t.Fatalf("tag: got %q, want 'Q'", dst[0])
	}
	r := wire.NewReader(dst[1:])
	length, err := r.ReadInt32()
	if err != nil {
		t.Fatal(err)
	}
	if int(length)+1 != len(dst) {
		t.Fatalf("length field %d should equal message length minus tag byte (%d)", length, len(dst)-1)
	}
	sql, err := r.ReadCString()
	if err != nil || sql != "SELECT 1" {
		t.Fatalf("got sql=%q err=%v, want %q", sql, err, "SELECT 1")
	}
}

func TestAppendStartupMessage(t *testing.T) {
	dst, err := AppendStartupMessage(nil, []KeyValue{
		{Key: "user", Value: "alice"},
		{Key: "database", Value: "app"},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := wire.NewReader(dst)
	length, err := r.ReadInt32()
	if err != nil {
		t.Fatal(err)
	}
	if int(length)+0 != len(dst) { // length excludes nothing extra here: no tag byte
		t.Fatalf("length field %d should equal total message length %d", length, len(dst))
	}
	version, err := r.ReadInt32()
	if err != nil || version != ProtocolVersion {
		t.Fatalf("version: got %d, %v", version, err)
	}
	user, _ := r.ReadCString()
	db, _ := r.ReadCString()
	if user != "user" {
		t.Fatalf("got key %q, want 'user'", user)
	}
	_ = db
}

func TestAppendSSLRequest(t *testing.T) {
	dst := AppendSSLRequest(nil)
	want := []byte{0, 0, 0, 8, 0x04, 0xD2, 0x16, 0x2F} // 80877103 big-endian
	if !bytes.Equal(dst, want) {
		t.Fatalf("got %v, want %v", dst, want)
	}
}

func TestAppendCancelRequest(t *testing.T) {
	dst := AppendCancelRequest(nil, 42, 1234)
	if len(dst) != 16 {
		t.Fatalf("expected 16 bytes, got %d", len(dst))
	}
	r := wire.NewReader(dst)
	length, _ := r.ReadInt32()
	if int(length) != 16 {
		t.Fatalf("length field: got %d, want 16", length)
	}
	code, _ := r.ReadInt32()
	if code != 80877102 {
		t.Fatalf("cancel code: got %d", code)
	}
	pid, _ := r.ReadInt32()
	key, _ := r.ReadInt32()
	if pid != 42 || key != 1234 {
		t.Fatalf("got pid=%d key=%d", pid, key)
	}
}

func TestAppendParseBindExecuteRoundTrip(t *testing.T) {
	dst, err := AppendParse(nil, "stmt1", "SELECT $1", []uint32{23})
	if err != nil {
		t.Fatal(err)
	}
	if dst[0] != 'P' {
		t.Fatalf("tag: got %q", dst[0])
	}

	values := []BindValueEncoder{
		func() ([]byte, wire.NullFlag, error) { return []byte{0, 0, 0, 42}, wire.ValuePresent, nil },
	}
	dst, err = AppendBind(dst, "", "stmt1", []int16{1}, values, []int16{1})
	if err != nil {
		t.Fatal(err)
	}

	dst, err = AppendExecute(dst, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	dst = AppendSync(dst)

	// Walk the combined buffer frame by frame by reading each length
	// field directly (backend Parse doesn't know frontend tags), and
	// check the frames tile every byte exactly once.
	pos := 0
	frames := 0
	for pos < len(dst) {
		r := wire.NewReader(dst[pos+1:])
		length, err := r.ReadInt32()
		if err != nil {
			t.Fatal(err)
		}
		pos += 1 + int(length)
		frames++
	}
	if pos != len(dst) {
		t.Fatalf("frames did not exactly tile the buffer: pos=%d len=%d", pos, len(dst))
	}
	if frames != 4 {
		t.Fatalf("expected 4 frames (Parse, Bind, Execute, Sync), got %d", frames)
	}
}

func TestAppendDescribeCloseInvalidSelector(t *testing.T) {
	if _, err := AppendDescribe(nil, 'X', "name"); err == nil {
		t.Fatal("expected error for invalid Describe selector")
	}
	if _, err := AppendClose(nil, 'X', "name"); err == nil {
		t.Fatal("expected error for invalid Close selector")
	}
}

func TestAppendFlushSyncTerminateCopyDone(t *testing.T) {
	for _, tc := range []struct {
		name string
		fn   func([]byte) []byte
		tag  byte
	}{
		{"Flush", AppendFlush, 'H'},
		{"Sync", AppendSync, 'S'},
		{"Terminate", AppendTerminate, 'X'},
		{"CopyDone", AppendCopyDone, 'c'},
	} {
		dst := tc.fn(nil)
		if len(dst) != 5 {
			t.Fatalf("%s: expected 5-byte empty-body frame, got %d", tc.name, len(dst))
		}
		if dst[0] != tc.tag {
			t.Fatalf("%s: tag got %q want %q", tc.name, dst[0], tc.tag)
		}
		if dst[4] != 4 {
			t.Fatalf("%s: length field got %d want 4", tc.name, dst[4])
		}
	}
}

func TestAppendCStringRejectsEmbeddedNul(t *testing.T) {
	if _, err := AppendQuery(nil, "a\x00b"); err == nil {
		t.Fatal("expected error for embedded nul in Query sql")
	}
	if _, err := AppendCopyFail(nil, "bad\x00msg"); err == nil {
		t.Fatal("expected error for embedded nul in CopyFail message")
	}
}
