package facebrain_errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// ErrStore marks failures that originated in the relational store.
	ErrStore = errors.New("store failure")
	// ErrProvider marks failures that originated in the face-detection provider.
	ErrProvider = errors.New("provider failure")
)

// Kind is the client-facing classification of a failed request.
type Kind string

const (
	KindInvalidRequest      Kind = "INVALID_REQUEST"
	KindInvalidFormat       Kind = "INVALID_FORMAT"
	KindWeakPassword        Kind = "WEAK_PASSWORD"
	KindAuthFailed          Kind = "AUTH_FAILED"
	KindNotFound            Kind = "NOT_FOUND"
	KindDuplicateEmail      Kind = "DUPLICATE_EMAIL"
	KindLookupFailed        Kind = "LOOKUP_FAILED"
	KindUpdateFailed        Kind = "UPDATE_FAILED"
	KindProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	KindProviderError       Kind = "PROVIDER_ERROR"
	KindRegistrationFailed  Kind = "REGISTRATION_FAILED"
)

// Error is returned by services. Message is safe to show to clients, Err is not.
type Error struct {
	Kind    Kind
	Message string
	// Fields reports which request fields were missing, keyed by field name.
	Fields map[string]bool
	// Field names the single offending field, if any.
	Field string
	Err   error
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

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind carried by err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Detail returns the internal cause of err, or "" when there is none.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return ""
}
