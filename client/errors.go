package client

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the client can report.
type Kind int

const (
	// KindMissingResponse means the transport returned neither a body nor an error.
	KindMissingResponse Kind = iota + 1
	// KindDecodeFailure means a body was received but did not match the expected schema.
	KindDecodeFailure
	// KindMessage carries a human-readable description, including business errors reported by the bank.
	KindMessage
	// KindWrapped carries a transport-level error unchanged.
	KindWrapped
)

func (k Kind) String() string {
	switch k {
	case KindMissingResponse:
		return "missing_response"
	case KindDecodeFailure:
		return "decode_failure"
	case KindMessage:
		return "message"
	case KindWrapped:
		return "wrapped"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error shape returned by every Client operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying error for KindWrapped and, when known, KindDecodeFailure
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingResponse:
		return "the bank did not respond with the expected data"
	case KindDecodeFailure:
		if e.Err != nil {
			return "unable to decode network response: " + e.Err.Error()
		}
		return "unable to decode network response"
	case KindWrapped:
		if e.Err != nil {
			return e.Err.Error()
		}
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// MissingResponse constructs a KindMissingResponse error.
func MissingResponse() *Error { return &Error{Kind: KindMissingResponse} }

// DecodeFailure constructs a KindDecodeFailure error; cause may be nil.
func DecodeFailure(cause error) *Error { return &Error{Kind: KindDecodeFailure, Err: cause} }

// NewMessage constructs a KindMessage error.
func NewMessage(text string) *Error { return &Error{Kind: KindMessage, Message: text} }

// Wrap normalizes err into an *Error. An error that already is (or wraps) an *Error is returned as that
// *Error so its kind is preserved; anything else becomes KindWrapped. Wrap(nil) returns nil.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr
	}
	return &Error{Kind: KindWrapped, Err: err}
}

// IsKind reports whether err is a client *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var clientErr *Error
	return errors.As(err, &clientErr) && clientErr.Kind == kind
}
