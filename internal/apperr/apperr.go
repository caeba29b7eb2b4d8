// Package apperr defines the typed failures surfaced by the repository and
// handler layers and how each one maps to an HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the error envelope.
type Kind string

const (
	KindValidation       Kind = "VALIDATION"
	KindInvalid          Kind = "INVALID"
	KindAlreadyExists    Kind = "ALREADY_EXISTS"
	KindAuthentication   Kind = "AUTHENTICATION"
	KindForbidden        Kind = "FORBIDDEN"
	KindNotFound         Kind = "NOT_FOUND"
	KindMethodNotAllowed Kind = "METHOD_NOT_ALLOWED"
	KindStorage          Kind = "STORAGE"
	KindInternal         Kind = "INTERNAL"
)

// GenericMessage is what clients see for every 5xx failure.
const GenericMessage = "An unexpected error occurred. Please try again later."

// StatusCode maps a kind to its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindInvalid, KindAlreadyExists:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

// Error is the domain failure type.
type Error struct {
	Kind    Kind
	Message string       // client-facing for non-5xx kinds
	Details []FieldError // only set for KindValidation
	Cause   error        // never sent to clients
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// StatusCode returns the HTTP status for the error's kind.
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// PublicMessage is the message safe to show a client.
func (e *Error) PublicMessage() string {
	if e.StatusCode() >= http.StatusInternalServerError {
		return GenericMessage
	}
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Validation reports malformed input with per-field details.
func Validation(details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation error", Details: details}
}

// Invalid reports well-formed input that breaks a domain rule.
func Invalid(message string) *Error {
	return New(KindInvalid, message)
}

func AlreadyExists(message string) *Error {
	return New(KindAlreadyExists, message)
}

func Authentication(message string) *Error {
	return New(KindAuthentication, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Storage(message string, cause error) *Error {
	return Wrap(KindStorage, message, cause)
}

func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// As classifies any error. Errors that are not *Error become KindInternal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("unexpected error", err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
