// Package errors defines the error taxonomy shared by the Datawarehouse model,
// the build protocol and the schema validator.
//
// Codes are usable as sentinels:
//
//	if errors.Is(err, perrors.ErrReservedName) { ... }
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure.
type ErrorCode string

const (
	// ErrInvalidArgument indicates a blank required field or a bad path.
	ErrInvalidArgument ErrorCode = "invalid-argument"
	// ErrInvalidOperation indicates an operation attempted before a required assignment.
	ErrInvalidOperation ErrorCode = "invalid-operation"
	// ErrMissingStation indicates a sequence run built before a station was assigned.
	ErrMissingStation ErrorCode = "missing-station"
	// ErrStationConflict indicates a sequence run attached to a second station.
	ErrStationConflict ErrorCode = "station-conflict"
	// ErrReservedName indicates a characteristic using the reserved name prefix.
	ErrReservedName ErrorCode = "reserved-name"
	// ErrUnsupportedMeasureType indicates a measure value of an unsupported type.
	ErrUnsupportedMeasureType ErrorCode = "unsupported-measure-type"
	// ErrInvalidExpression indicates an unknown limit expression.
	ErrInvalidExpression ErrorCode = "invalid-expression"
	// ErrSchemaValidation indicates a document rejected by the schema.
	ErrSchemaValidation ErrorCode = "schema-validation"
	// ErrResourceNotFound indicates missing schema fragments.
	ErrResourceNotFound ErrorCode = "resource-not-found"
)

// Error makes a code usable as an errors.Is target.
func (c ErrorCode) Error() string {
	return string(c)
}

// Class returns the broad category of the code.
func (c ErrorCode) Class() ErrorCode {
	switch c {
	case ErrMissingStation, ErrStationConflict:
		return ErrInvalidOperation
	default:
		return c
	}
}

// Error is a classified failure raised by constructors, attach methods and Build.
type Error struct {
	Err     error
	Code    ErrorCode
	Message string
}

// New builds an Error with a code and message.
func New(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf formats a message and builds an Error.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap builds an Error that carries an underlying cause.
func Wrap(code ErrorCode, err error, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Error formats the failure as "[code] message: cause".
func (e *Error) Error() string {
	if e == nil {
		return "error <nil>"
	}
	s := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the error's code or the code's class.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	code, ok := target.(ErrorCode)
	if !ok {
		return false
	}
	return e.Code == code || e.Code.Class() == code
}

// CodeOf returns the code carried by err, or "" when err is not classified.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var v *Validation
	if errors.As(err, &v) {
		return ErrSchemaValidation
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return ""
}
