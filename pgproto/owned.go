package pgproto

import "github.com/nxpg/pgproto/wire"

// Own converts a BackendMessage that borrows from a caller's input
// buffer into a message that owns its data, by draining any
// sub-iterators and copying their bytes into heap-backed containers.
// This is a convenience adapter, not part of the core contract
// (spec.md §4.C "Optional owned-message adapter") — most callers that
// process a message before reading more bytes never need it.
//
// Messages that already carry only inline scalars or already-copied
// Go strings (everything except DataRow, CopyData, CopyIn/OutResponse,
// RowDescription, ParameterDescription, Error/NoticeResponse) are
// returned unchanged.
func Own(msg BackendMessage) (BackendMessage, error) {
	switch m := msg.(type) {
	case DataRow:
		return ownDataRow(m)
	case CopyData:
		data := make([]byte, len(m.Data))
		copy(data, m.Data)
		return CopyData{Data: data}, nil
	case CopyInResponse:
		formats, err := ownFormatCodes(m.ColumnFormats())
		if err != nil {
			return nil, err
		}
		return OwnedCopyInResponse{OverallFormat: m.OverallFormat, ColumnFormats: formats}, nil
	case CopyOutResponse:
		formats, err := ownFormatCodes(m.ColumnFormats())
		if err != nil {
			return nil, err
		}
		return OwnedCopyOutResponse{OverallFormat: m.OverallFormat, ColumnFormats: formats}, nil
	case RowDescription:
		fields, err := ownFieldDescriptors(m.Fields())
		if err != nil {
			return nil, err
		}
		return OwnedRowDescription{Fields: fields}, nil
	case ParameterDescription:
		oids, err := ownParameterOIDs(m.OIDs())
		if err != nil {
			return nil, err
		}
		return OwnedParameterDescription{OIDs: oids}, nil
	case ErrorResponse:
		fields, err := ownErrorFields(m.Fields())
		if err != nil {
			return nil, err
		}
		return OwnedErrorResponse{Fields: fields}, nil
	case NoticeResponse:
		fields, err := ownErrorFields(m.Fields())
		if err != nil {
			return nil, err
		}
		return OwnedNoticeResponse{Fields: fields}, nil
	default:
		return msg, nil
	}
}

// OwnedValue is one drained, heap-owned DataRow column value.
type OwnedValue struct {
	Data []byte
	Null wire.NullFlag
}

// OwnedDataRow is a DataRow with every column value copied out.
type OwnedDataRow struct {
	Values []OwnedValue
}

func (OwnedDataRow) isBackendMessage() {}

func ownDataRow(m DataRow) (BackendMessage, error) {
	it := m.Values()
	var values []OwnedValue
	for it.Next() {
		data, null := it.Value()
		cp := make([]byte, len(data))
		copy(cp, data)
		values = append(values, OwnedValue{Data: cp, Null: null})
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return OwnedDataRow{Values: values}, nil
}

func ownFormatCodes(it *FormatCodes) ([]int16, error) {
	var out []int16
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

func ownParameterOIDs(it *ParameterOIDs) ([]uint32, error) {
	var out []uint32
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

func ownFieldDescriptors(it *FieldDescriptors) ([]FieldDescriptor, error) {
	var out []FieldDescriptor
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

func ownErrorFields(it *ErrorFields) ([]ErrorField, error) {
	var out []ErrorField
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

// OwnedCopyInResponse is a CopyInResponse with its column formats
// drained into a slice.
type OwnedCopyInResponse struct {
	OverallFormat byte
	ColumnFormats []int16
}

func (OwnedCopyInResponse) isBackendMessage() {}

// OwnedCopyOutResponse is a CopyOutResponse with its column formats
// drained into a slice.
type OwnedCopyOutResponse struct {
	OverallFormat byte
	ColumnFormats []int16
}

func (OwnedCopyOutResponse) isBackendMessage() {}

// OwnedRowDescription is a RowDescription with its fields drained into
// a slice.
type OwnedRowDescription struct {
	Fields []FieldDescriptor
}

func (OwnedRowDescription) isBackendMessage() {}

// OwnedParameterDescription is a ParameterDescription with its Oids
// drained into a slice.
type OwnedParameterDescription struct {
	OIDs []uint32
}

func (OwnedParameterDescription) isBackendMessage() {}

// OwnedErrorResponse is an ErrorResponse with its fields drained into
// a slice.
type OwnedErrorResponse struct {
	Fields []ErrorField
}

func (OwnedErrorResponse) isBackendMessage() {}

// OwnedNoticeResponse is a NoticeResponse with its fields drained into
// a slice.
type OwnedNoticeResponse struct {
	Fields []ErrorField
}

func (OwnedNoticeResponse) isBackendMessage() {}
