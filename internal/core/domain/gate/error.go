package gate

import (
	"errors"
	"net/http"
)

// Class is the status classification of a gatekeeping failure. It fully
// determines the HTTP status code of the response.
type Class int

const (
	ClassBadRequest Class = iota
	ClassUnauthorized
	ClassForbidden
	ClassNotFound
	ClassPayloadTooLarge
	ClassTooManyRequests
	ClassInternal
)

func (c Class) HTTPStatus() int {
	switch c {
	case ClassBadRequest:
		return http.StatusBadRequest
	case ClassUnauthorized:
		return http.StatusUnauthorized
	case ClassForbidden:
		return http.StatusForbidden
	case ClassNotFound:
		return http.StatusNotFound
	case ClassPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ClassTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (c Class) String() string {
	switch c {
	case ClassBadRequest:
		return "bad_request"
	case ClassUnauthorized:
		return "unauthorized"
	case ClassForbidden:
		return "forbidden"
	case ClassNotFound:
		return "not_found"
	case ClassPayloadTooLarge:
		return "payload_too_large"
	case ClassTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Detail is one structured entry in an Error, typically a single failed
// validation rule scoped to a field.
type Detail struct {
	Message string `json:"msg"`
	Field   string `json:"field,omitempty"`
}

// Error is the single structured error value produced by any pipeline stage
// and consumed by the terminal responder. Values are immutable once built;
// the message is always safe to show a client.
type Error struct {
	Class   Class
	Message string
	Details []Detail
}

func (e *Error) Error() string { return e.Message }

// New constructs an Error for the given class.
func New(class Class, message string, details ...Detail) *Error {
	return &Error{Class: class, Message: message, Details: details}
}

func BadRequest(message string, details ...Detail) *Error {
	return New(ClassBadRequest, message, details...)
}

func Unauthorized(message string, details ...Detail) *Error {
	return New(ClassUnauthorized, message, details...)
}

func Forbidden(message string, details ...Detail) *Error {
	return New(ClassForbidden, message, details...)
}

func NotFound(message string, details ...Detail) *Error {
	return New(ClassNotFound, message, details...)
}

func PayloadTooLarge(message string, details ...Detail) *Error {
	return New(ClassPayloadTooLarge, message, details...)
}

func TooManyRequests(message string, details ...Detail) *Error {
	return New(ClassTooManyRequests, message, details...)
}

func Internal(message string, details ...Detail) *Error {
	return New(ClassInternal, message, details...)
}

// As unwraps err into a *Error when possible.
func As(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
