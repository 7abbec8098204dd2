package pgproto

import (
	"fmt"

	"github.com/nxpg/pgproto/pgerr"
	"github.com/nxpg/pgproto/wire"
)

// headerLen is the tag byte plus the 4-byte length field.
const headerLen = 5

// Parse implements the backend-message parser (component C, spec.md
// §4.C). It reads at most one message from buf and never reads past
// len(buf). If buf does not yet hold a complete message, it returns a
// ParseOutcome with a nil Message (Complete() == false) and no error;
// the caller should read more bytes and call Parse again with the
// larger buffer. A non-nil error means buf's prefix is structurally
// invalid and will never parse.
func Parse(buf []byte) (ParseOutcome, error) {
	if len(buf) < headerLen {
		return ParseOutcome{}, nil
	}

	tag := buf[0]
	length, _ := wire.NewReader(buf[1:headerLen]).ReadInt32()
	if length < 4 {
		return ParseOutcome{}, fmt.Errorf("%w: length field %d is smaller than itself", pgerr.ErrInvalidMessageLength, length)
	}

	frameLen := int(length) + 1 // +1 for the tag byte, which the length field excludes
	if len(buf) < frameLen {
		return ParseOutcome{NeedAtLeast: frameLen}, nil
	}

	body := buf[headerLen:frameLen]
	msg, err := decodeBackendBody(tag, body)
	if err != nil {
		return ParseOutcome{}, err
	}
	return ParseOutcome{Message: msg, Consumed: frameLen}, nil
}

func decodeBackendBody(tag byte, body []byte) (BackendMessage, error) {
	switch tag {
	case tagParseComplete:
		return decodeEmpty(body, ParseComplete{})
	case tagBindComplete:
		return decodeEmpty(body, BindComplete{})
	case tagCloseComplete:
		return decodeEmpty(body, CloseComplete{})
	case tagCopyDone:
		return decodeEmpty(body, CopyDoneBackend{})
	case tagNoData:
		return decodeEmpty(body, NoData{})
	case tagEmptyQueryResponse:
		return decodeEmpty(body, EmptyQueryResponse{})
	case tagPortalSuspended:
		return decodeEmpty(body, PortalSuspended{})
	case tagBackendKeyData:
		return decodeBackendKeyData(body)
	case tagNotificationResponse:
		return decodeNotificationResponse(body)
	case tagParameterStatus:
		return decodeParameterStatus(body)
	case tagCommandComplete:
		return decodeCommandComplete(body)
	case tagCopyData:
		return CopyData{Data: body}, nil
	case tagDataRow:
		return decodeDataRow(body)
	case tagCopyInResponse:
		return decodeCopyInResponse(body)
	case tagCopyOutResponse:
		return decodeCopyOutResponse(body)
	case tagRowDescription:
		return decodeRowDescription(body)
	case tagParameterDescription:
		return decodeParameterDescription(body)
	case tagErrorResponse:
		return ErrorResponse{body: body}, nil
	case tagNoticeResponse:
		return NoticeResponse{body: body}, nil
	case tagAuthentication:
		return decodeAuthentication(body)
	case tagReadyForQuery:
		return decodeReadyForQuery(body)
	default:
		return nil, fmt.Errorf("%w: %q", pgerr.ErrUnknownTag, string(tag))
	}
}

func decodeEmpty(body []byte, msg BackendMessage) (BackendMessage, error) {
	if len(body) != 0 {
		return nil, fmt.Errorf("%w: expected empty body, got %d bytes", pgerr.ErrInvalidMessageLength, len(body))
	}
	return msg, nil
}

func decodeBackendKeyData(body []byte) (BackendMessage, error) {
	if len(body) != 8 {
		return nil, fmt.Errorf("%w: BackendKeyData body must be 8 bytes, got %d", pgerr.ErrInvalidMessageLength, len(body))
	}
	r := wire.NewReader(body)
	pid, _ := r.ReadInt32()
	key, _ := r.ReadInt32()
	return BackendKeyData{ProcessID: pid, SecretKey: key}, nil
}

func decodeNotificationResponse(body []byte) (BackendMessage, error) {
	r := wire.NewReader(body)
	pid, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pgerr.ErrInvalidMessageLength, err)
	}
	channel, err := r.ReadCString()
	if err != nil {
		return nil, err
	}
	payload, err := r.ReadCString()
	if err != nil {
		return nil, err
	}
	if err := checkTrailingEmpty(r); err != nil {
		return nil, err
	}
	return NotificationResponse{ProcessID: pid, Channel: channel, Payload: payload}, nil
}

func decodeParameterStatus(body []byte) (BackendMessage, error) {
	r := wire.NewReader(body)
	name, err := r.ReadCString()
	if err != nil {
		return nil, err
	}
	value, err := r.ReadCString()
	if err != nil {
		return nil, err
	}
	if err := checkTrailingEmpty(r); err != nil {
		return nil, err
	}
	return ParameterStatus{Name: name, Value: value}, nil
}

func decodeCommandComplete(body []byte) (BackendMessage, error) {
	r := wire.NewReader(body)
	tag, err := r.ReadCString()
	if err != nil {
		return nil, err
	}
	if err := checkTrailingEmpty(r); err != nil {
		return nil, err
	}
	return CommandComplete{Tag: tag}, nil
}

func decodeDataRow(body []byte) (BackendMessage, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("%w: DataRow body shorter than its value count", pgerr.ErrInvalidMessageLength)
	}
	return DataRow{body: body}, nil
}

func decodeCopyInResponse(body []byte) (BackendMessage, error) {
	overall, body, err := peelCopyResponseHeader(body)
	if err != nil {
		return nil, err
	}
	return CopyInResponse{copyResponse{OverallFormat: overall, body: body}}, nil
}

func decodeCopyOutResponse(body []byte) (BackendMessage, error) {
	overall, body, err := peelCopyResponseHeader(body)
	if err != nil {
		return nil, err
	}
	return CopyOutResponse{copyResponse{OverallFormat: overall, body: body}}, nil
}

// peelCopyResponseHeader validates the overall-format byte and column
// count are present, then returns the whole body (the FormatCodes
// cursor re-reads them; this just validates the message isn't
// truncated before handing out the lazy cursor).
func peelCopyResponseHeader(body []byte) (overall byte, rest []byte, err error) {
	r := wire.NewReader(body)
	overall, err = r.ReadUint8()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", pgerr.ErrInvalidMessageLength, err)
	}
	count, err := r.ReadUint16()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", pgerr.ErrInvalidMessageLength, err)
	}
	if r.Remaining() != int(count)*2 {
		return 0, nil, fmt.Errorf("%w: column format count mismatch", pgerr.ErrInvalidMessageLength)
	}
	return overall, body, nil
}

func decodeRowDescription(body []byte) (BackendMessage, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("%w: RowDescription body shorter than its field count", pgerr.ErrInvalidMessageLength)
	}
	return RowDescription{body: body}, nil
}

func decodeParameterDescription(body []byte) (BackendMessage, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("%w: ParameterDescription body shorter than its count", pgerr.ErrInvalidMessageLength)
	}
	return ParameterDescription{body: body}, nil
}

func decodeReadyForQuery(body []byte) (BackendMessage, error) {
	if len(body) != 1 {
		return nil, fmt.Errorf("%w: ReadyForQuery body must be 1 byte, got %d", pgerr.ErrInvalidMessageLength, len(body))
	}
	return ReadyForQuery{TxStatus: body[0]}, nil
}

func decodeAuthentication(body []byte) (BackendMessage, error) {
	r := wire.NewReader(body)
	subcode, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pgerr.ErrInvalidMessageLength, err)
	}

	switch subcode {
	case authOK:
		if err := checkTrailingEmpty(r); err != nil {
			return nil, err
		}
		return AuthenticationOk{}, nil
	case authKerberosV5:
		if err := checkTrailingEmpty(r); err != nil {
			return nil, err
		}
		return AuthenticationKerberosV5{}, nil
	case authCleartextPassword:
		if err := checkTrailingEmpty(r); err != nil {
			return nil, err
		}
		return AuthenticationCleartextPassword{}, nil
	case authMD5Password:
		salt, err := r.ReadBytes(4)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pgerr.ErrInvalidMessageLength, err)
		}
		if err := checkTrailingEmpty(r); err != nil {
			return nil, err
		}
		var s [4]byte
		copy(s[:], salt)
		return AuthenticationMd5Password{Salt: s}, nil
	case authSCMCredential:
		if err := checkTrailingEmpty(r); err != nil {
			return nil, err
		}
		return AuthenticationSCMCredential{}, nil
	case authGSS:
		if err := checkTrailingEmpty(r); err != nil {
			return nil, err
		}
		return AuthenticationGSS{}, nil
	case authSSPI:
		if err := checkTrailingEmpty(r); err != nil {
			return nil, err
		}
		return AuthenticationSSPI{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", pgerr.ErrUnknownAuthSubcode, subcode)
	}
}
