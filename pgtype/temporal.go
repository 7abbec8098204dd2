package pgtype

import (
	"fmt"
	"math"
	"time"

	"github.com/nxpg/pgproto/pgerr"
)

// pgEpoch is the protocol's reference instant for timestamp and date
// values: midnight UTC on 2000-01-01, not the Unix epoch.
var pgEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// pgEpochUnix is pgEpoch expressed in Unix seconds, used to move
// between raw microsecond offsets and time.Time without ever routing
// the conversion through time.Duration: Duration is an int64 count of
// nanoseconds, which overflows for perfectly valid in-range
// microsecond offsets once they pass roughly +/-292 years, long before
// the wire format's own int64-microsecond range is exhausted.
var pgEpochUnix = pgEpoch.Unix()

// microsToTime converts a signed 64-bit microsecond offset from
// pgEpoch into a time.Time by splitting it into whole seconds and a
// sub-second nanosecond remainder up front, so the arithmetic stays
// within time.Unix's second-granularity range instead of overflowing
// an intermediate nanosecond count.
func microsToTime(micros int64) time.Time {
	sec := micros / 1_000_000
	nsec := (micros % 1_000_000) * 1000
	return time.Unix(pgEpochUnix+sec, nsec).UTC()
}

// timeToMicros is the inverse of microsToTime: it derives the
// microsecond offset from t.Unix()/t.Nanosecond() directly, again
// never forming a time.Duration along the way.
func timeToMicros(t time.Time) int64 {
	sec := t.Unix() - pgEpochUnix
	nsec := int64(t.Nanosecond())
	return sec*1_000_000 + nsec/1000
}

// DecodeTimestamp decodes a signed 64-bit microsecond offset from
// pgEpoch, shared by both timestamp and timestamptz (the codec does
// not distinguish them: the time zone is a column-type concern, not a
// wire-shape one). Every int64 microsecond value round-trips, including
// ones far outside time.Duration's narrower range.
func DecodeTimestamp(buf []byte) (time.Time, error) {
	micros, err := DecodeInt8(buf)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w (timestamp)", err)
	}
	return microsToTime(micros), nil
}

// EncodeTimestamp appends t as microseconds since pgEpoch.
func EncodeTimestamp(dst []byte, t time.Time) []byte {
	return EncodeInt8(dst, timeToMicros(t))
}

// DecodeDate decodes a signed 32-bit day offset from pgEpoch's date.
func DecodeDate(buf []byte) (time.Time, error) {
	days, err := DecodeInt4(buf)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w (date)", err)
	}
	return pgEpoch.AddDate(0, 0, int(days)), nil
}

// EncodeDate appends t's date as days since pgEpoch, truncating any
// time-of-day component.
func EncodeDate(dst []byte, t time.Time) []byte {
	y, m, d := t.UTC().Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int32((midnight.Unix() - pgEpochUnix) / 86400)
	return EncodeInt4(dst, days)
}

// maxMicrosAsDuration is the largest (and, negated, the smallest)
// microsecond count that still fits in a time.Duration without
// overflowing its int64-nanosecond range.
const maxMicrosAsDuration = math.MaxInt64 / 1000

// DecodeTime decodes a signed 64-bit microsecond offset from midnight,
// shared by time and timetz. A real server never emits a value outside
// a single day, but the wire format itself permits any int64
// microsecond count; values too large to fit a time.Duration are
// reported rather than silently wrapped.
func DecodeTime(buf []byte) (time.Duration, error) {
	if len(buf) != 8 {
		return 0, fmt.Errorf("%w: time must be 8 bytes, got %d", pgerr.ErrInvalidBufferSize, len(buf))
	}
	micros, err := DecodeInt8(buf)
	if err != nil {
		return 0, err
	}
	if micros > maxMicrosAsDuration || micros < -maxMicrosAsDuration {
		return 0, fmt.Errorf("%w: %d microseconds does not fit a time.Duration", pgerr.ErrValueTooLarge, micros)
	}
	return time.Duration(micros) * time.Microsecond, nil
}

// EncodeTime appends d (a duration since midnight) as microseconds.
func EncodeTime(dst []byte, d time.Duration) []byte {
	return EncodeInt8(dst, d.Microseconds())
}
