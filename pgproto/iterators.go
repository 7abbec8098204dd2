package pgproto

import (
	"fmt"

	"github.com/nxpg/pgproto/pgerr"
	"github.com/nxpg/pgproto/wire"
)

// checkTrailingEmpty reports ErrInvalidMessageLength if r has unread
// bytes left, the rule every sub-iterator applies once it has yielded
// its declared number of items.
func checkTrailingEmpty(r *wire.Reader) error {
	if r.Remaining() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", pgerr.ErrInvalidMessageLength, r.Remaining())
	}
	return nil
}

// DataRowValues is a forward-only fallible cursor over a DataRow's
// column values. Next returns false at end-of-row or on error; Err
// distinguishes the two. Callers may stop pulling before exhausting the
// declared count without error — the trailing-bytes check only runs
// once the count is actually exhausted.
type DataRowValues struct {
	r         *wire.Reader
	remaining int
	cur       []byte
	curNull   wire.NullFlag
	err       error
	done      bool
}

func newDataRowValues(body []byte) *DataRowValues {
	it := &DataRowValues{r: wire.NewReader(body)}
	count, err := it.r.ReadUint16()
	if err != nil {
		it.err = fmt.Errorf("%w: %v", pgerr.ErrInvalidMessageLength, err)
		it.done = true
		return it
	}
	it.remaining = int(count)
	return it
}

// Next advances to the next value, returning false at the end of the
// row or on error.
func (it *DataRowValues) Next() bool {
	if it.done {
		return false
	}
	if it.remaining == 0 {
		it.done = true
		it.err = checkTrailingEmpty(it.r)
		return false
	}
	data, isNull, err := it.r.ReadFramedValue()
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	it.cur, it.curNull = data, isNull
	it.remaining--
	return true
}

// Value returns the current value and whether it is SQL NULL. Valid
// only after a Next call that returned true.
func (it *DataRowValues) Value() ([]byte, wire.NullFlag) { return it.cur, it.curNull }

// Err returns the first error encountered, if any.
func (it *DataRowValues) Err() error { return it.err }

// FormatCodes is a forward-only fallible cursor over a sequence of
// 16-bit format codes (0 = text, 1 = binary), used by CopyIn/Out
// column formats.
type FormatCodes struct {
	r         *wire.Reader
	remaining int
	cur       int16
	err       error
	done      bool
}

func newFormatCodes(body []byte) *FormatCodes {
	it := &FormatCodes{r: wire.NewReader(body)}
	if _, err := it.r.ReadUint8(); err != nil { // overall format byte, not part of the cursor
		it.err = fmt.Errorf("%w: %v", pgerr.ErrInvalidMessageLength, err)
		it.done = true
		return it
	}
	count, err := it.r.ReadUint16()
	if err != nil {
		it.err = fmt.Errorf("%w: %v", pgerr.ErrInvalidMessageLength, err)
		it.done = true
		return it
	}
	it.remaining = int(count)
	return it
}

// Next advances to the next format code.
func (it *FormatCodes) Next() bool {
	if it.done {
		return false
	}
	if it.remaining == 0 {
		it.done = true
		it.err = checkTrailingEmpty(it.r)
		return false
	}
	v, err := it.r.ReadInt16()
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	it.cur = v
	it.remaining--
	return true
}

// Value returns the current format code.
func (it *FormatCodes) Value() int16 { return it.cur }

// Err returns the first error encountered, if any.
func (it *FormatCodes) Err() error { return it.err }

// ParameterOIDs is a forward-only fallible cursor over a
// ParameterDescription's type Oids.
type ParameterOIDs struct {
	r         *wire.Reader
	remaining int
	cur       uint32
	err       error
	done      bool
}

func newParameterOIDs(body []byte) *ParameterOIDs {
	it := &ParameterOIDs{r: wire.NewReader(body)}
	count, err := it.r.ReadUint16()
	if err != nil {
		it.err = fmt.Errorf("%w: %v", pgerr.ErrInvalidMessageLength, err)
		it.done = true
		return it
	}
	it.remaining = int(count)
	return it
}

// Next advances to the next parameter Oid.
func (it *ParameterOIDs) Next() bool {
	if it.done {
		return false
	}
	if it.remaining == 0 {
		it.done = true
		it.err = checkTrailingEmpty(it.r)
		return false
	}
	v, err := it.r.ReadUint32()
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	it.cur = v
	it.remaining--
	return true
}

// Value returns the current Oid.
func (it *ParameterOIDs) Value() uint32 { return it.cur }

// Err returns the first error encountered, if any.
func (it *ParameterOIDs) Err() error { return it.err }

// ErrorFields is a forward-only fallible cursor over an
// Error/NoticeResponse's {code, value} fields, terminated by a single
// zero byte rather than a declared count.
type ErrorFields struct {
	r       *wire.Reader
	cur     ErrorField
	err     error
	done    bool
	stopped bool // terminator already consumed
}

func newErrorFields(body []byte) *ErrorFields {
	return &ErrorFields{r: wire.NewReader(body)}
}

// Next advances to the next field, returning false once the terminator
// is reached or on error.
func (it *ErrorFields) Next() bool {
	if it.done {
		return false
	}
	code, err := it.r.ReadUint8()
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	if code == 0 {
		it.stopped = true
		it.done = true
		it.err = checkTrailingEmpty(it.r)
		return false
	}
	value, err := it.r.ReadCString()
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	it.cur = ErrorField{Code: code, Value: value}
	return true
}

// Value returns the current field.
func (it *ErrorFields) Value() ErrorField { return it.cur }

// Err returns the first error encountered, if any.
func (it *ErrorFields) Err() error { return it.err }

// FieldDescriptors is a forward-only fallible cursor over a
// RowDescription's field descriptors.
type FieldDescriptors struct {
	r         *wire.Reader
	remaining int
	cur       FieldDescriptor
	err       error
	done      bool
}

func newFieldDescriptors(body []byte) *FieldDescriptors {
	it := &FieldDescriptors{r: wire.NewReader(body)}
	count, err := it.r.ReadUint16()
	if err != nil {
		it.err = fmt.Errorf("%w: %v", pgerr.ErrInvalidMessageLength, err)
		it.done = true
		return it
	}
	it.remaining = int(count)
	return it
}

// Next advances to the next field descriptor.
func (it *FieldDescriptors) Next() bool {
	if it.done {
		return false
	}
	if it.remaining == 0 {
		it.done = true
		it.err = checkTrailingEmpty(it.r)
		return false
	}

	var fd FieldDescriptor
	var err error
	if fd.Name, err = it.r.ReadCString(); err == nil {
		var u32 uint32
		if u32, err = it.r.ReadUint32(); err == nil {
			fd.TableOID = u32
		}
	}
	if err == nil {
		fd.ColumnAttribute, err = it.r.ReadInt16()
	}
	if err == nil {
		fd.TypeOID, err = it.r.ReadUint32()
	}
	if err == nil {
		fd.TypeSize, err = it.r.ReadInt16()
	}
	if err == nil {
		fd.TypeModifier, err = it.r.ReadInt32()
	}
	if err == nil {
		fd.FormatCode, err = it.r.ReadInt16()
	}
	if err != nil {
		it.err = err
		it.done = true
		return false
	}

	it.cur = fd
	it.remaining--
	return true
}

// Value returns the current field descriptor.
func (it *FieldDescriptors) Value() FieldDescriptor { return it.cur }

// Err returns the first error encountered, if any.
func (it *FieldDescriptors) Err() error { return it.err }
