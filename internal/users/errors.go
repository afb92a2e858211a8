package users

import "errors"

// Code is a machine-readable error kind.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeValidation   Code = "VALIDATION"
)

// Error is a domain error with a code and a caller-facing message.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a domain error of the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "User not found"}
	ErrUserExists         = &Error{Code: CodeConflict, Message: "User already exists"}
	ErrUsernameTaken      = &Error{Code: CodeConflict, Message: "Username taken"}
	ErrProfileExists      = &Error{Code: CodeConflict, Message: "User already has a profile"}
	ErrInvalidCredentials = &Error{Code: CodeUnauthorized, Message: "Username and/or password are incorrect"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation failed"}
)

func conflict(base *Error, cause error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Cause: cause}
}

func invalid(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// AsError extracts the domain error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
