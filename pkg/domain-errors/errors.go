// Package domainerrors carries coded, caller-visible failures from services to
// the transport layer. Stores return sentinel facts; services translate them into
// one of these codes so handlers never inspect infrastructure errors.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure. The string value is the wire error code.
type Code string

const (
	CodeNotFound            Code = "not_found"
	CodeBadRequest          Code = "bad_request"
	CodeConflict            Code = "conflict"
	CodeUnprocessableEntity Code = "unprocessable_entity"
	CodeUnsupportedMedia    Code = "unsupported_media_type"
	CodeTimeout             Code = "timeout"
	CodeInternal            Code = "internal_error"
)

// Error is a coded domain error. Cause is kept for logging and errors.Is chains
// but never rendered to clients.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Cause: err}
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.Cause
			continue
		}
		return false
	}
	return false
}

// Is reports whether the outermost domain error in the chain carries code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost domain error, or CodeInternal when the
// chain has none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsDomain reports whether err carries a domain code at all.
func IsDomain(err error) bool {
	var de *Error
	return errors.As(err, &de)
}
