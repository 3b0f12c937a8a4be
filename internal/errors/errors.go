// Package errors defines the typed errors used across the acquisition
// pipeline. Every user-visible failure carries a Kind for classification and
// a human-readable message; raw causes stay wrapped for logs only.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error for propagation policy decisions.
type Kind string

const (
	// KindValidation covers missing configuration and malformed selections.
	// Never retried, surfaced immediately.
	KindValidation Kind = "validation"
	// KindAuth covers credentials rejected by a remote. Surfaced, not retried.
	KindAuth Kind = "auth"
	// KindNetwork covers timeouts, 5xx responses and rate limits.
	KindNetwork Kind = "network"
	// KindAPI covers logical failures reported by a remote, such as an
	// unknown remote identifier.
	KindAPI Kind = "api"
	// KindCancelled marks superseded or user-aborted operations. Never
	// surfaced as a failure.
	KindCancelled Kind = "cancelled"
)

// Error is the pipeline's error type.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NewValidation creates a validation error.
func NewValidation(message string, cause error) *Error {
	return New(KindValidation, message, cause)
}

// NewAuth creates an auth error.
func NewAuth(message string, cause error) *Error {
	return New(KindAuth, message, cause)
}

// NewNetwork creates a network error.
func NewNetwork(message string, cause error) *Error {
	return New(KindNetwork, message, cause)
}

// NewTimeout creates a network error describing an exceeded wall-clock bound.
func NewTimeout(operation string) *Error {
	return New(KindNetwork, fmt.Sprintf("operation timed out: %s", operation), nil)
}

// NewAPI creates an api error.
func NewAPI(message string, cause error) *Error {
	return New(KindAPI, message, cause)
}

// NewCancelled creates a cancelled error.
func NewCancelled(operation string) *Error {
	return New(KindCancelled, fmt.Sprintf("operation cancelled: %s", operation), nil)
}

// KindOf returns the Kind of err, or KindNetwork for plain errors, which is
// the conservative default for anything that crossed a network boundary.
func KindOf(err error) Kind {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Kind
	}
	return KindNetwork
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var typed *Error
	return stderrors.As(err, &typed) && typed.Kind == kind
}

// IsCancelled reports whether err marks a superseded or aborted operation.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}
