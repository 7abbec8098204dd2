package pgproto

import (
	"bytes"
	"testing"

	"github.com/nxpg/pgproto/wire"
)

func TestOwnDataRow(t *testing.T) {
	buf := []byte{
		0x44, 0x00, 0x00, 0x00, 0x0F, 0x00, 0x02,
		0xFF, 0xFF, 0xFF, 0xFF,
		0x00, 0x00, 0x00, 0x01, 'A',
	}
	out, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	owned, err := Own(out.Message)
	if err != nil {
		t.Fatal(err)
	}
	row, ok := owned.(OwnedDataRow)
	if !ok {
		t.Fatalf("expected OwnedDataRow, got %T", owned)
	}
	if len(row.Values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(row.Values))
	}
	if !row.Values[0].Null.IsNull() {
		t.Fatal("first value should be NULL")
	}
	if row.Values[1].Null.IsNull() || !bytes.Equal(row.Values[1].Data, []byte("A")) {
		t.Fatalf("second value: got %q null=%v", row.Values[1].Data, row.Values[1].Null)
	}
}

func TestOwnDataRowCopiesUnderlyingBytes(t *testing.T) {
	buf := []byte{
		0x44, 0x00, 0x00, 0x00, 0x0F, 0x00, 0x02,
		0xFF, 0xFF, 0xFF, 0xFF,
		0x00, 0x00, 0x00, 0x01, 'A',
	}
	out, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	owned, err := Own(out.Message)
	if err != nil {
		t.Fatal(err)
	}
	row := owned.(OwnedDataRow)
	buf[15] = 'Z' // mutate the original buffer's backing array
	if !bytes.Equal(row.Values[1].Data, []byte("A")) {
		t.Fatalf("owned value should be immune to source mutation, got %q", row.Values[1].Data)
	}
}

func TestOwnMessageWithoutIteratorIsUnchanged(t *testing.T) {
	msg := ReadyForQuery{TxStatus: 'I'}
	owned, err := Own(msg)
	if err != nil {
		t.Fatal(err)
	}
	if owned != BackendMessage(msg) {
		t.Fatalf("expected ReadyForQuery to pass through unchanged, got %+v", owned)
	}
}

func TestOwnRowDescription(t *testing.T) {
	var body []byte
	body = wire.AppendUint16(body, 1)
	var err error
	body, err = wire.AppendCString(body, "id")
	if err != nil {
		t.Fatal(err)
	}
	body = wire.AppendUint32(body, 16384)
	body = wire.AppendInt16(body, 1)
	body = wire.AppendUint32(body, 23)
	body = wire.AppendInt16(body, 4)
	body = wire.AppendInt32(body, -1)
	body = wire.AppendInt16(body, 0)

	owned, err := ownFieldDescriptors(newFieldDescriptors(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(owned) != 1 || owned[0].Name != "id" || owned[0].TypeOID != 23 {
		t.Fatalf("got %+v", owned)
	}
}

func TestOwnErrorResponse(t *testing.T) {
	var body []byte
	body = append(body, 'S')
	body = append(body, "ERROR\x00"...)
	body = append(body, 0)

	out, err := Own(ErrorResponse{body: body})
	if err != nil {
		t.Fatal(err)
	}
	er, ok := out.(OwnedErrorResponse)
	if !ok || len(er.Fields) != 1 || er.Fields[0].Value != "ERROR" {
		t.Fatalf("got %+v (ok=%v)", out, ok)
	}
}
