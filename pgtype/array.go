package pgtype

import (
	"fmt"
	"math"

	"github.com/nxpg/pgproto/pgerr"
	"github.com/nxpg/pgproto/wire"
)

// ArrayDimension is one dimension of an array value (spec.md §3).
type ArrayDimension struct {
	Length     int32
	LowerBound int32
}

// Array is a decoded array value's header plus a cursor over its
// element payloads. Dimensions is fully materialized (there are
// rarely more than a handful); Elements is a forward-only cursor over
// the, potentially large, element payloads.
type Array struct {
	HasNulls    bool
	ElementType Oid
	Dimensions  []ArrayDimension
	elements    *wire.Reader
	elemCount   int
}

// Elements returns a fresh forward-only cursor over this array's
// element payloads, in row-major wire order.
func (a Array) Elements() *ArrayElements {
	return &ArrayElements{r: wire.NewReader(a.elements.Rest()), remaining: a.elemCount}
}

// ArrayElements is a forward-only fallible cursor over an array
// value's {length, bytes} element payloads.
type ArrayElements struct {
	r         *wire.Reader
	remaining int
	cur       []byte
	curNull   wire.NullFlag
	err       error
	done      bool
}

// Next advances to the next element, returning false at the end of
// the array or on error.
func (it *ArrayElements) Next() bool {
	if it.done {
		return false
	}
	if it.remaining == 0 {
		it.done = true
		if it.r.Remaining() != 0 {
			it.err = fmt.Errorf("%w: %d trailing bytes", pgerr.ErrInvalidMessageLength, it.r.Remaining())
		}
		return false
	}
	data, null, err := it.r.ReadFramedValue()
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	it.cur, it.curNull = data, null
	it.remaining--
	return true
}

// Value returns the current element and whether it is SQL NULL.
func (it *ArrayElements) Value() ([]byte, wire.NullFlag) { return it.cur, it.curNull }

// Err returns the first error encountered, if any.
func (it *ArrayElements) Err() error { return it.err }

// DecodeArray decodes an array header: dimension count, has-nulls
// flag, element-type Oid, then that many {length, lower_bound} pairs.
// The element count is the product of every dimension's length
// (overflowing ⇒ TooManyElements; zero dimensions ⇒ zero elements).
// DecodeArray does not check the remainder of buf against that count;
// the Elements cursor reports a short or over-long element section
// when it is walked.
func DecodeArray(buf []byte) (Array, error) {
	r := wire.NewReader(buf)

	dimCount, err := r.ReadInt32()
	if err != nil {
		return Array{}, fmt.Errorf("%w (array dimension count)", err)
	}
	if dimCount < 0 {
		return Array{}, fmt.Errorf("%w: negative array dimension count %d", pgerr.ErrInvalidDimensionCount, dimCount)
	}

	hasNullsByte, err := r.ReadUint8()
	if err != nil {
		return Array{}, fmt.Errorf("%w (array has-nulls flag)", err)
	}

	elemTypeRaw, err := r.ReadUint32()
	if err != nil {
		return Array{}, fmt.Errorf("%w (array element type)", err)
	}

	dims := make([]ArrayDimension, dimCount)
	elemCount := 1
	for i := range dims {
		length, err := r.ReadInt32()
		if err != nil {
			return Array{}, fmt.Errorf("%w (array dimension %d length)", err, i)
		}
		lowerBound, err := r.ReadInt32()
		if err != nil {
			return Array{}, fmt.Errorf("%w (array dimension %d lower bound)", err, i)
		}
		if length < 0 {
			return Array{}, fmt.Errorf("%w: negative array dimension length %d", pgerr.ErrInvalidDimensionCount, length)
		}
		dims[i] = ArrayDimension{Length: length, LowerBound: lowerBound}

		if length > 0 && elemCount > math.MaxInt32/int(length) {
			return Array{}, fmt.Errorf("%w: dimension product overflows", pgerr.ErrTooManyElements)
		}
		elemCount *= int(length)
	}
	if dimCount == 0 {
		elemCount = 0
	}

	return Array{
		HasNulls:    hasNullsByte != 0,
		ElementType: Oid(elemTypeRaw),
		Dimensions:  dims,
		elements:    r,
		elemCount:   elemCount,
	}, nil
}

// ArrayElementEncoder produces one array element's raw bytes and
// reports whether the element is SQL NULL.
type ArrayElementEncoder func() (data []byte, null wire.NullFlag, err error)

// EncodeArray appends an array header followed by len(elements)
// framed element payloads, each produced by calling the corresponding
// encoder.
func EncodeArray(dst []byte, hasNulls bool, elementType Oid, dims []ArrayDimension, elements []ArrayElementEncoder) ([]byte, error) {
	n, err := wire.Int32FromLen(len(dims))
	if err != nil {
		return dst, err
	}
	dst = wire.AppendInt32(dst, n)

	if hasNulls {
		dst = wire.AppendUint8(dst, 1)
	} else {
		dst = wire.AppendUint8(dst, 0)
	}
	dst = wire.AppendUint32(dst, uint32(elementType))

	for _, d := range dims {
		dst = wire.AppendInt32(dst, d.Length)
		dst = wire.AppendInt32(dst, d.LowerBound)
	}

	for _, enc := range elements {
		data, null, err := enc()
		if err != nil {
			return dst, err
		}
		if dst, err = wire.AppendFramedValue(dst, data, null); err != nil {
			return dst, err
		}
	}
	return dst, nil
}
