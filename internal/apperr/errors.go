// Package apperr defines the error taxonomy shared by the domain services
// and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeUnknown      Code = "UNKNOWN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
)

// Code markers for errors.Is checks that only care about the category.
var (
	NotFound     = &Error{Code: CodeNotFound}
	Validation   = &Error{Code: CodeValidation}
	Conflict     = &Error{Code: CodeConflict}
	Unauthorized = &Error{Code: CodeUnauthorized}
	Forbidden    = &Error{Code: CodeForbidden}
)

// Error is a categorized error with a human-readable message.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the same value, or a bare code marker with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t == e {
		return true
	}
	return t.Message == "" && t.Cause == nil && t.Code == e.Code
}

// New creates an error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error with a code and message that wraps cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HTTPStatus maps a code to the status returned to API clients.
// Conflicts surface as 400 for compatibility with existing clients.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeConflict:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
