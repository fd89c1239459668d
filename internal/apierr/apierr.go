// Package apierr defines the error kinds every component reports its failures
// through. Handlers translate kinds into HTTP statuses and the response
// envelope; nothing outside this taxonomy crosses the HTTP boundary.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	// KindInternal covers downstream dependency failures.
	KindInternal Kind = iota
	// KindInvalidArgument marks malformed or missing required input.
	KindInvalidArgument
	// KindUnauthorized marks missing, invalid, expired, or rotated-out
	// credentials, including bad passwords.
	KindUnauthorized
	// KindForbidden marks an authenticated caller who is not the owner.
	KindForbidden
	// KindNotFound marks an absent referenced entity.
	KindNotFound
	// KindConflict marks a uniqueness violation.
	KindConflict
	// KindUploadFailed marks a media store failure.
	KindUploadFailed
)

// Error carries a kind and a human-readable message, optionally wrapping the
// underlying cause.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs an error of the provided kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap annotates cause with a kind and message.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "internal server error"
}

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUploadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err carries the provided kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
