package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers that need to branch on the
// failure mode without inspecting message text.
type Code int

const (
	CodeInvalidInput Code = iota + 1
	CodeNotFound
	CodeUnavailable
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeInvalidInput:
		return "invalid_input"
	case CodeNotFound:
		return "not_found"
	case CodeUnavailable:
		return "unavailable"
	case CodeInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// AppError is the error type returned by service operations. Op records
// the operation that failed, e.g. "DownloadService.Download".
type AppError struct {
	Code    Code
	Message string
	Op      string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// E constructs an AppError from an operation, a code, an optional cause,
// and a message.
func E(op string, code Code, err error, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return E(op, CodeInvalidInput, err, message)
}

func NotFound(op string, err error, message string) *AppError {
	return E(op, CodeNotFound, err, message)
}

func Unavailable(op string, err error, message string) *AppError {
	return E(op, CodeUnavailable, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return E(op, CodeInternal, err, message)
}

// CodeOf returns the code of the outermost AppError in err's chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func IsInvalidInput(err error) bool {
	return CodeOf(err) == CodeInvalidInput
}

func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}
