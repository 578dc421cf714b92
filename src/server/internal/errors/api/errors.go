package api

import "github.com/cockroachdb/errors"

type ErrorCode string

const DefaultErrorCode = ErrorCode("unknown_error")

func WrapError(err *Error, msg string) *Error {
	return &Error{
		ErrorCode:     err.ErrorCode,
		UserMessage:   err.UserMessage,
		InternalError: errors.Wrap(err.InternalError, msg),
	}
}

func CommitError(err error, errorCode ErrorCode, userMessage string) *Error {
	return &Error{
		ErrorCode:     errorCode,
		UserMessage:   userMessage,
		InternalError: err,
	}
}

// Error is what every usecase returns, the gateway needs the code and user message
// to build a response and the internal error to log
type Error struct {
	ErrorCode     ErrorCode
	UserMessage   string
	InternalError error
}

func (e Error) Cause() error {
	return e.InternalError
}

func (e Error) Unwrap() error {
	return e.InternalError
}

func (e Error) Error() string {
	return e.InternalError.Error()
}
