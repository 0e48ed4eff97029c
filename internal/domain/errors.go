// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the boundary error mapper.
// Every kind maps to exactly one HTTP status in the api layer.
type Kind int

// Error kinds produced by the application.
const (
	KindInternal Kind = iota
	KindInvalidCredentials
	KindUnavailable
	KindTokenMissing
	KindTokenMalformed
	KindTokenInvalidSignature
	KindTokenExpired
	KindValidationFailed
	KindNotFound
	KindForbidden
	KindConflict
	KindPayloadTooLarge
	KindRateLimited
	KindMethodNotAllowed

	// kindCount must stay last.
	kindCount
)

var kindNames = [...]string{
	KindInternal:              "internal",
	KindInvalidCredentials:    "invalid_credentials",
	KindUnavailable:           "unavailable",
	KindTokenMissing:          "token_missing",
	KindTokenMalformed:        "token_malformed",
	KindTokenInvalidSignature: "token_invalid_signature",
	KindTokenExpired:          "token_expired",
	KindValidationFailed:      "validation_failed",
	KindNotFound:              "not_found",
	KindForbidden:             "forbidden",
	KindConflict:              "conflict",
	KindPayloadTooLarge:       "payload_too_large",
	KindRateLimited:           "rate_limited",
	KindMethodNotAllowed:      "method_not_allowed",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) || kindNames[k] == "" {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every kind the application can produce.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Error is the tagged error variant carried from the failure site to the
// boundary. Message is safe to show to clients; Err holds the cause and is
// only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the cause to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates an Error of the given kind with an underlying cause.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewValidationError creates a ValidationFailed error for a single field.
func NewValidationError(field, message string, err error) *Error {
	return &Error{Kind: KindValidationFailed, Message: message, Field: field, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
// Errors that carry no kind are Internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common domain errors used across the application.
var (
	// ErrValidation is the cause attached to entity validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = NewError(KindForbidden, "You do not have access to this resource")
)
