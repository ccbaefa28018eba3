package clierr

import "errors"

// Type categorizes a CLI-facing error for consistent messaging and exit codes.
type Type string

const (
	Validation Type = "validation"
	NotFound   Type = "not_found"
	Auth       Type = "auth"
	Remote     Type = "remote"
	Rejected   Type = "rejected"
	Internal   Type = "internal"
)

var exitCodes = map[Type]int{
	Validation: 2,
	NotFound:   3,
	Auth:       4,
	Remote:     5,
	Rejected:   6,
	Internal:   1,
}

// Error is a structured user-facing error.
type Error struct {
	Type    Type
	Message string
	Err     error // optional underlying error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the process exit status for the error's type.
func (e *Error) ExitCode() int {
	if code, ok := exitCodes[e.Type]; ok {
		return code
	}
	return 1
}

// New constructs a new CLI Error.
func New(t Type, msg string, err error) *Error { return &Error{Type: t, Message: msg, Err: err} }

// ExitCode returns the exit status for any error: 0 for nil, the typed code for an
// *Error anywhere in the chain, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode()
	}
	return 1
}
