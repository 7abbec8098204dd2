package wire

// NullFlag is the two-valued tag spec.md §3 describes: value encoders
// return it to tell the framing code whether to write the special
// length -1 (SQL NULL) or the value's real encoded bytes.
type NullFlag int

const (
	// ValuePresent means the encoder wrote real bytes for this value.
	ValuePresent NullFlag = iota
	// ValueAbsent means this value is SQL NULL; no bytes were written.
	ValueAbsent
)

// IsNull reports whether the flag denotes SQL NULL.
func (f NullFlag) IsNull() bool { return f == ValueAbsent }
