package pgproto

import (
	"fmt"

	"github.com/nxpg/pgproto/pgerr"
	"github.com/nxpg/pgproto/wire"
)

// Protocol-level magic numbers (spec.md §6), shared by the unframed
// startup-phase messages.
const (
	ProtocolVersion   int32 = 196608 // 3.0 = (3 << 16) | 0
	sslRequestCode    int32 = 80877103
	cancelRequestCode int32 = 80877102
)

// Describe/Close target selector (component D, spec.md §4.D).
const (
	DescribeStatement byte = 'S'
	DescribePortal    byte = 'P'
)

// frontend message tags (client -> server).
const (
	tagPasswordMessage byte = 'p'
	tagQuery           byte = 'Q'
	tagParse           byte = 'P'
	tagBind            byte = 'B'
	tagExecute         byte = 'E'
	tagDescribe        byte = 'D'
	tagClose           byte = 'C'
	tagCopyDataFront   byte = 'd'
	tagCopyDoneFront   byte = 'c'
	tagCopyFail        byte = 'f'
	tagFlush           byte = 'H'
	tagSync            byte = 'S'
	tagTerminate       byte = 'X'
)

func appendTaggedFramed(dst []byte, tag byte, body func(dst []byte) ([]byte, error)) ([]byte, error) {
	dst = append(dst, tag)
	return wire.WriteFramed(dst, body)
}

// AppendStartupMessage appends a StartupMessage: no tag byte, framed
// body = i32 protocol version followed by {cstr name, cstr value}
// pairs in params' iteration order, terminated by a zero byte. Use an
// ordered slice of pairs if wire-order matters to the server (Postgres
// does not require any particular order).
func AppendStartupMessage(dst []byte, params []KeyValue) ([]byte, error) {
	return wire.WriteFramed(dst, func(dst []byte) ([]byte, error) {
		dst = wire.AppendInt32(dst, ProtocolVersion)
		for _, kv := range params {
			var err error
			if dst, err = wire.AppendCString(dst, kv.Key); err != nil {
				return dst, err
			}
			if dst, err = wire.AppendCString(dst, kv.Value); err != nil {
				return dst, err
			}
		}
		return append(dst, 0), nil
	})
}

// KeyValue is an ordered startup-parameter pair.
type KeyValue struct {
	Key   string
	Value string
}

// AppendSSLRequest appends the unframed-by-tag SslRequest: a framed
// body carrying only the magic number 80877103.
func AppendSSLRequest(dst []byte) []byte {
	dst, _ = wire.WriteFramed(dst, func(dst []byte) ([]byte, error) {
		return wire.AppendInt32(dst, sslRequestCode), nil
	})
	return dst
}

// AppendCancelRequest appends a CancelRequest: framed body = magic
// number 80877102, process id, secret key.
func AppendCancelRequest(dst []byte, processID, secretKey int32) []byte {
	dst, _ = wire.WriteFramed(dst, func(dst []byte) ([]byte, error) {
		dst = wire.AppendInt32(dst, cancelRequestCode)
		dst = wire.AppendInt32(dst, processID)
		dst = wire.AppendInt32(dst, secretKey)
		return dst, nil
	})
	return dst
}

// AppendPasswordMessage appends a PasswordMessage ('p'): cstr password.
func AppendPasswordMessage(dst []byte, password string) ([]byte, error) {
	return appendTaggedFramed(dst, tagPasswordMessage, func(dst []byte) ([]byte, error) {
		return wire.AppendCString(dst, password)
	})
}

// AppendQuery appends a Query ('Q'): cstr sql.
func AppendQuery(dst []byte, sql string) ([]byte, error) {
	return appendTaggedFramed(dst, tagQuery, func(dst []byte) ([]byte, error) {
		return wire.AppendCString(dst, sql)
	})
}

// AppendParse appends a Parse ('P'): cstr name, cstr query, u16 n,
// n x u32 parameter type Oid.
func AppendParse(dst []byte, name, query string, paramTypes []uint32) ([]byte, error) {
	return appendTaggedFramed(dst, tagParse, func(dst []byte) ([]byte, error) {
		var err error
		if dst, err = wire.AppendCString(dst, name); err != nil {
			return dst, err
		}
		if dst, err = wire.AppendCString(dst, query); err != nil {
			return dst, err
		}
		n, err := wire.Int16FromLen(len(paramTypes))
		if err != nil {
			return dst, err
		}
		dst = wire.AppendInt16(dst, n)
		for _, oid := range paramTypes {
			dst = wire.AppendUint32(dst, oid)
		}
		return dst, nil
	})
}

// BindValueEncoder produces one Bind parameter's raw encoded bytes and
// reports whether the value is SQL NULL, the same hook shape the
// array codec (component B) uses for its elements.
type BindValueEncoder func() (data []byte, null wire.NullFlag, err error)

// AppendBind appends a Bind ('B'): cstr portal, cstr statement, u16
// n_fmt, n_fmt x i16 format, u16 n_val, n_val x {i32 length, bytes or
// -1 for NULL}, u16 n_res_fmt, n_res_fmt x i16 result format. Each
// value is produced by calling the corresponding encoder in values;
// the framework backpatches its length exactly as the array codec
// does for elements.
func AppendBind(dst []byte, portal, statement string, paramFormats []int16, values []BindValueEncoder, resultFormats []int16) ([]byte, error) {
	return appendTaggedFramed(dst, tagBind, func(dst []byte) ([]byte, error) {
		var err error
		if dst, err = wire.AppendCString(dst, portal); err != nil {
			return dst, err
		}
		if dst, err = wire.AppendCString(dst, statement); err != nil {
			return dst, err
		}

		if dst, err = appendInt16CountedFormats(dst, paramFormats); err != nil {
			return dst, err
		}

		nVal, err := wire.Int16FromLen(len(values))
		if err != nil {
			return dst, err
		}
		dst = wire.AppendInt16(dst, nVal)
		for _, enc := range values {
			data, null, err := enc()
			if err != nil {
				return dst, err
			}
			if dst, err = wire.AppendFramedValue(dst, data, null); err != nil {
				return dst, err
			}
		}

		return appendInt16CountedFormats(dst, resultFormats)
	})
}

func appendInt16CountedFormats(dst []byte, formats []int16) ([]byte, error) {
	n, err := wire.Int16FromLen(len(formats))
	if err != nil {
		return dst, err
	}
	dst = wire.AppendInt16(dst, n)
	for _, f := range formats {
		dst = wire.AppendInt16(dst, f)
	}
	return dst, nil
}

// AppendExecute appends an Execute ('E'): cstr portal, i32 max_rows.
func AppendExecute(dst []byte, portal string, maxRows int32) ([]byte, error) {
	return appendTaggedFramed(dst, tagExecute, func(dst []byte) ([]byte, error) {
		var err error
		if dst, err = wire.AppendCString(dst, portal); err != nil {
			return dst, err
		}
		return wire.AppendInt32(dst, maxRows), nil
	})
}

// AppendDescribe appends a Describe ('D'): u8 which
// (DescribeStatement/DescribePortal), cstr name.
func AppendDescribe(dst []byte, which byte, name string) ([]byte, error) {
	if which != DescribeStatement && which != DescribePortal {
		return dst, fmt.Errorf("%w: invalid Describe selector %q", pgerr.ErrInvalidMessageLength, which)
	}
	return appendTaggedFramed(dst, tagDescribe, func(dst []byte) ([]byte, error) {
		dst = wire.AppendUint8(dst, which)
		return wire.AppendCString(dst, name)
	})
}

// AppendClose appends a Close ('C'): u8 which, cstr name.
func AppendClose(dst []byte, which byte, name string) ([]byte, error) {
	if which != DescribeStatement && which != DescribePortal {
		return dst, fmt.Errorf("%w: invalid Close selector %q", pgerr.ErrInvalidMessageLength, which)
	}
	return appendTaggedFramed(dst, tagClose, func(dst []byte) ([]byte, error) {
		dst = wire.AppendUint8(dst, which)
		return wire.AppendCString(dst, name)
	})
}

// AppendCopyData appends a frontend CopyData ('d'): raw payload bytes.
func AppendCopyData(dst []byte, payload []byte) ([]byte, error) {
	return appendTaggedFramed(dst, tagCopyDataFront, func(dst []byte) ([]byte, error) {
		return wire.AppendBytes(dst, payload), nil
	})
}

// AppendCopyDone appends a frontend CopyDone ('c'): framed, empty body.
func AppendCopyDone(dst []byte) []byte { return appendEmptyFramed(dst, tagCopyDoneFront) }

// AppendFlush appends a Flush ('H'): framed, empty body. The source
// this library is modeled on never emitted Flush (spec.md §9); it is
// added here for protocol completeness.
func AppendFlush(dst []byte) []byte { return appendEmptyFramed(dst, tagFlush) }

// AppendSync appends a Sync ('S'): framed, empty body.
func AppendSync(dst []byte) []byte { return appendEmptyFramed(dst, tagSync) }

// AppendTerminate appends a Terminate ('X'): framed, empty body.
func AppendTerminate(dst []byte) []byte { return appendEmptyFramed(dst, tagTerminate) }

func appendEmptyFramed(dst []byte, tag byte) []byte {
	dst, _ = appendTaggedFramed(dst, tag, func(dst []byte) ([]byte, error) { return dst, nil })
	return dst
}

// AppendCopyFail appends a CopyFail ('f'): cstr message.
func AppendCopyFail(dst []byte, message string) ([]byte, error) {
	return appendTaggedFramed(dst, tagCopyFail, func(dst []byte) ([]byte, error) {
		return wire.AppendCString(dst, message)
	})
}
