package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeInvalidInput ErrorType = "INVALID_INPUT"
	ErrTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrTypeForbidden    ErrorType = "FORBIDDEN"
	ErrTypeConflict     ErrorType = "CONFLICT"
	ErrTypeInternal     ErrorType = "INTERNAL"
	ErrTypeUnavailable  ErrorType = "UNAVAILABLE"
)

// DomainError is the error type returned by every API call. StatusCode,
// ServerMessage and Payload are set when the error came from an HTTP response.
type DomainError struct {
	Type          ErrorType
	Message       string
	Err           error
	Stack         []byte
	StatusCode    int
	ServerMessage string
	Payload       []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// FromResponse builds an error for a non-2xx HTTP response. serverMessage is
// the "message" field of the response body and may be empty.
func FromResponse(statusCode int, serverMessage string, payload []byte) *DomainError {
	message := serverMessage
	if message == "" {
		message = fmt.Sprintf("unexpected status code: %d", statusCode)
	}
	e := New(TypeForStatus(statusCode), message, nil)
	e.StatusCode = statusCode
	e.ServerMessage = serverMessage
	e.Payload = payload
	return e
}

// TypeForStatus maps an HTTP status code to an ErrorType.
func TypeForStatus(code int) ErrorType {
	switch {
	case code == 400 || code == 422:
		return ErrTypeInvalidInput
	case code == 401:
		return ErrTypeUnauthorized
	case code == 403:
		return ErrTypeForbidden
	case code == 404:
		return ErrTypeNotFound
	case code == 409:
		return ErrTypeConflict
	case code == 502 || code == 503 || code == 504:
		return ErrTypeUnavailable
	default:
		return ErrTypeInternal
	}
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func Unauthorized(message string, err error) *DomainError {
	return New(ErrTypeUnauthorized, message, err)
}

func Forbidden(message string, err error) *DomainError {
	return New(ErrTypeForbidden, message, err)
}

func Conflict(message string, err error) *DomainError {
	return New(ErrTypeConflict, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

// IsType reports whether err (or anything it wraps) is a DomainError of type t.
func IsType(err error, t ErrorType) bool {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type == t
	}
	return false
}

// Message returns the user-facing message of err: the server's message, or
// the message of an error raised locally before any request was made.
// Transport failures and bare status codes yield fallback.
func Message(err error, fallback string) string {
	var de *DomainError
	if !stderrors.As(err, &de) {
		return fallback
	}
	if de.ServerMessage != "" {
		return de.ServerMessage
	}
	if de.StatusCode == 0 && de.Err == nil && de.Message != "" {
		return de.Message
	}
	return fallback
}
