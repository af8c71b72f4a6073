// Package apperr is the error taxonomy shared by every layer above storage.
package apperr

import (
	"errors"
	"fmt"

	"github.com/mmynk/clubhouse/internal/storage"
)

// Kind classifies an error for callers and for the wire.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindAlreadyExists    Kind = "already_exists"
	KindUnavailable      Kind = "unavailable"
	KindValidation       Kind = "validation"
	KindTransient        Kind = "transient"
	KindUnauthenticated  Kind = "unauthenticated"
	KindPermissionDenied Kind = "permission_denied"
)

// Error is a classified error with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error      { return New(KindNotFound, message) }
func AlreadyExists(message string) *Error { return New(KindAlreadyExists, message) }
func Unavailable(message string) *Error   { return New(KindUnavailable, message) }
func Validation(message string) *Error    { return New(KindValidation, message) }

// Transient wraps an unexpected backend fault.
func Transient(message string, err error) *Error {
	return Wrap(KindTransient, message, err)
}

// KindOf returns the kind carried by err, or "" if err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Classify turns any error into an *Error. Already classified errors pass
// through; storage sentinels map to their kinds; everything else is transient.
// Returns nil for a nil error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return Wrap(KindNotFound, "not found", err)
	case errors.Is(err, storage.ErrConflict):
		return Wrap(KindAlreadyExists, "already exists", err)
	case errors.Is(err, storage.ErrReferenced):
		return Wrap(KindUnavailable, "still referenced", err)
	}
	return Wrap(KindTransient, "try again", err)
}
