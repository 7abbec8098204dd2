// Package pgerr holds the small set of sentinel errors shared by wire,
// pgtype, and pgproto. Every fallible operation in those packages returns
// one of these, wrapped with fmt.Errorf("%w: ...") for context; the core
// never panics and never returns an opaque boxed error.
package pgerr

import "errors"

var (
	// ErrInvalidMessageLength means a message body's declared structure
	// does not match its actual length (a non-empty trailer where empty
	// is required, a DataRow shorter than its header, ...).
	ErrInvalidMessageLength = errors.New("pgproto: invalid message length")

	// ErrInvalidBufferSize means a fixed-width value decoder was handed
	// a buffer of the wrong length.
	ErrInvalidBufferSize = errors.New("pgproto: invalid buffer size")

	// ErrUnknownTag means Parse saw a message tag byte it doesn't
	// recognize.
	ErrUnknownTag = errors.New("pgproto: unknown message tag")

	// ErrUnknownAuthSubcode means an Authentication message carried a
	// subcode Parse doesn't recognize.
	ErrUnknownAuthSubcode = errors.New("pgproto: unknown authentication subcode")

	// ErrInvalidUTF8 means bytes declared textual were not valid UTF-8.
	ErrInvalidUTF8 = errors.New("pgproto: invalid utf8")

	// ErrEmbeddedNul means a c-string writer was given a string
	// containing an interior zero byte.
	ErrEmbeddedNul = errors.New("pgproto: embedded nul byte")

	// ErrValueTooLarge means a length would not fit the wire width of
	// its length field.
	ErrValueTooLarge = errors.New("pgproto: value too large")

	// ErrTooManyElements means an array's dimension-product overflowed
	// while computing the expected element count.
	ErrTooManyElements = errors.New("pgproto: too many array elements")

	// ErrInvalidKeyLength means an hstore entry declared a negative key
	// length.
	ErrInvalidKeyLength = errors.New("pgproto: invalid key length")

	// ErrInvalidDimensionCount means an array declared a negative
	// dimension count.
	ErrInvalidDimensionCount = errors.New("pgproto: invalid dimension count")

	// ErrInvalidEntryCount means an hstore value declared a negative
	// entry count.
	ErrInvalidEntryCount = errors.New("pgproto: invalid entry count")

	// ErrUnexpectedEOF means a read ran past the end of its input
	// buffer. Parse reports a frame that is not fully buffered as
	// Incomplete rather than with this error, but returns it when a
	// c-string inside a complete frame has no terminator; it also
	// surfaces from sub-iterators and value decoders given a short
	// buffer directly.
	ErrUnexpectedEOF = errors.New("pgproto: unexpected end of buffer")
)
