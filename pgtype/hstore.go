package pgtype

import (
	"fmt"
	"unicode/utf8"

	"github.com/nxpg/pgproto/pgerr"
	"github.com/nxpg/pgproto/wire"
)

// HstoreEntry is one key plus an optional value. Both are copied out
// of the decoded buffer into new Go strings; they do not borrow it.
type HstoreEntry struct {
	Key   string
	Value string
	Null  wire.NullFlag
}

// HstoreEntries is a forward-only fallible cursor over an hstore
// value's entries, the same shape as pgproto's message sub-iterators.
type HstoreEntries struct {
	r         *wire.Reader
	remaining int
	cur       HstoreEntry
	err       error
	done      bool
}

// DecodeHstore constructs an entry cursor over buf: a signed 32-bit
// entry count followed by that many {pascal key, pascal value} pairs,
// where a value length of -1 denotes SQL NULL. A negative entry count
// is rejected outright (spec.md §9's resolved open question).
func DecodeHstore(buf []byte) (*HstoreEntries, error) {
	r := wire.NewReader(buf)
	count, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("%w (hstore entry count)", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative hstore entry count %d", pgerr.ErrInvalidEntryCount, count)
	}
	return &HstoreEntries{r: r, remaining: int(count)}, nil
}

// Next advances to the next entry, returning false at the end of the
// map or on error.
func (it *HstoreEntries) Next() bool {
	if it.done {
		return false
	}
	if it.remaining == 0 {
		it.done = true
		if it.r.Remaining() != 0 {
			it.err = fmt.Errorf("%w: %d trailing bytes", pgerr.ErrInvalidBufferSize, it.r.Remaining())
		}
		return false
	}

	keyLen, err := it.r.ReadInt32()
	if err != nil {
		it.err = fmt.Errorf("%w (hstore key length)", err)
		it.done = true
		return false
	}
	if keyLen < 0 {
		it.err = fmt.Errorf("%w: negative hstore key length %d", pgerr.ErrInvalidKeyLength, keyLen)
		it.done = true
		return false
	}
	keyBytes, err := it.r.ReadBytes(int(keyLen))
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	if !utf8.Valid(keyBytes) {
		it.err = pgerr.ErrInvalidUTF8
		it.done = true
		return false
	}

	valLen, err := it.r.ReadInt32()
	if err != nil {
		it.err = fmt.Errorf("%w (hstore value length)", err)
		it.done = true
		return false
	}
	entry := HstoreEntry{Key: string(keyBytes)}
	if valLen == -1 {
		entry.Null = wire.ValueAbsent
	} else if valLen < 0 {
		it.err = fmt.Errorf("%w: negative hstore value length %d", pgerr.ErrInvalidMessageLength, valLen)
		it.done = true
		return false
	} else {
		valBytes, err := it.r.ReadBytes(int(valLen))
		if err != nil {
			it.err = err
			it.done = true
			return false
		}
		if !utf8.Valid(valBytes) {
			it.err = pgerr.ErrInvalidUTF8
			it.done = true
			return false
		}
		entry.Value = string(valBytes)
		entry.Null = wire.ValuePresent
	}

	it.cur = entry
	it.remaining--
	return true
}

// Value returns the current entry.
func (it *HstoreEntries) Value() HstoreEntry { return it.cur }

// Err returns the first error encountered, if any.
func (it *HstoreEntries) Err() error { return it.err }

// HstoreEntryEncoder produces one hstore entry to append.
type HstoreEntryEncoder func() (key string, value string, null wire.NullFlag, err error)

// EncodeHstore appends a signed 32-bit entry count followed by each
// entries[i]'s {pascal key, pascal value-or-NULL} pair.
func EncodeHstore(dst []byte, entries []HstoreEntryEncoder) ([]byte, error) {
	n, err := wire.Int32FromLen(len(entries))
	if err != nil {
		return dst, err
	}
	dst = wire.AppendInt32(dst, n)
	for _, enc := range entries {
		key, value, null, err := enc()
		if err != nil {
			return dst, err
		}
		if dst, err = wire.AppendPascalString(dst, []byte(key)); err != nil {
			return dst, err
		}
		if null.IsNull() {
			dst = wire.AppendInt32(dst, -1)
			continue
		}
		if dst, err = wire.AppendPascalString(dst, []byte(value)); err != nil {
			return dst, err
		}
	}
	return dst, nil
}
