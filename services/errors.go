package services

import "errors"

// Error kinds. Every error returned by this package wraps one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)

// Error is a domain error with a message that is safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrSelfFollow         = newError(ErrValidation, "You cannot follow yourself.")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
