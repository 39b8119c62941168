package store

import (
	"net/http"
)

// Error is a persistence failure. Drivers return one of the sentinels below,
// usually with the driver error attached through WithCause, and callers test
// for it with errors.Is.
type Error struct {
	Message string
	status  int
	cause   error
}

func newError(status int, message string) *Error {
	return &Error{Message: message, status: status}
}

// Sentinel errors.
var (
	ErrNotFound      = newError(http.StatusNotFound, "resource not found")
	ErrAlreadyExists = newError(http.StatusConflict, "resource already exists")
	ErrInvalidInput  = newError(http.StatusBadRequest, "invalid input")

	// ErrMissingReference means a row points at a parent that does not
	// exist, such as a pin for an unknown recipe.
	ErrMissingReference = newError(http.StatusUnprocessableEntity, "referenced resource does not exist")
)

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.status == e.status && t.Message == e.Message
}

// Status is the HTTP status a handler should answer with.
func (e *Error) Status() int { return e.status }

// WithCause returns a copy of e carrying err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}
