// Package common defines the error taxonomy shared by the store adapters,
// the use-cases and the HTTP boundary. Callers match kinds with errors.Is.
package common

import "errors"

var (
	// Store-level kinds.
	ErrNotFound         = errors.New("resource not found")
	ErrUniqueViolation  = errors.New("unique constraint violated")
	ErrInvalidID        = errors.New("invalid id format")
	ErrStoreUnavailable = errors.New("internal error")

	// Auth kinds.
	ErrTokenInvalid    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Error is a taxonomy member with a public message. The underlying cause is
// kept for logging only and is deliberately not exposed through Unwrap, so a
// backend error type can never be recovered with errors.As above the store.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Is(target error) bool {
	return target == e.kind
}

// Kind returns the taxonomy sentinel.
func (e *Error) Kind() error {
	return e.kind
}

// Cause returns the backend error that triggered this one, if any.
func (e *Error) Cause() error {
	return e.cause
}

func newError(kind error, msg string, cause error) *Error {
	if msg == "" {
		msg = kind.Error()
	}
	return &Error{kind: kind, msg: msg, cause: cause}
}

func NotFound(msg string) error {
	return newError(ErrNotFound, msg, nil)
}

func UniqueViolation(msg string) error {
	return newError(ErrUniqueViolation, msg, nil)
}

func InvalidID(msg string) error {
	return newError(ErrInvalidID, msg, nil)
}

func StoreUnavailable(cause error) error {
	return newError(ErrStoreUnavailable, "", cause)
}

func TokenInvalid(cause error) error {
	return newError(ErrTokenInvalid, "", cause)
}

func Unauthenticated(msg string) error {
	return newError(ErrUnauthenticated, msg, nil)
}

var kinds = []error{
	ErrNotFound,
	ErrUniqueViolation,
	ErrInvalidID,
	ErrStoreUnavailable,
	ErrTokenInvalid,
	ErrUnauthenticated,
}

// KindOf returns the taxonomy member err belongs to, or nil when err is not
// part of the taxonomy.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
