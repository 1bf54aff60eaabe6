// Package apierror carries the HTTP status of a failed use-case from the
// services layer to the handlers.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind string

const (
	Validation     Kind = "VALIDATION"
	Authentication Kind = "AUTHENTICATION"
	Authorization  Kind = "AUTHORIZATION"
	NotFound       Kind = "NOT_FOUND"
	Conflict       Kind = "CONFLICT"
	Internal       Kind = "INTERNAL"
)

// Error is a client-facing failure. Message is safe to return to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case Authorization:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap keeps an existing *Error and otherwise classifies err as kind.
func Wrap(err error, kind Kind, message string) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewValidation(message string) *Error     { return New(Validation, message) }
func NewAuthentication(message string) *Error { return New(Authentication, message) }
func NewAuthorization(message string) *Error  { return New(Authorization, message) }
func NewNotFound(message string) *Error       { return New(NotFound, message) }
func NewConflict(message string) *Error       { return New(Conflict, message) }

// As extracts the *Error in err's chain. Errors without one are reported as
// Internal.
func As(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Kind: Internal, Message: "internal server error", Err: err}
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
