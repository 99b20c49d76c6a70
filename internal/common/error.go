// Package common defines the error taxonomy and shared constants used across
// GophDocs layers. Callers should use errors.Is to match the kind sentinels
// and errors.As to extract the *Error context.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Malformed input: bad title length, missing field, unknown enum value.
	ErrValidation = errors.New("validation error")

	// Referenced document, permission, link or user is absent.
	ErrNotFound = errors.New("not found")

	// Actor lacks ownership or role.
	ErrUnauthorized = errors.New("unauthorized")

	// Illegal lifecycle transition.
	ErrInvalidState = errors.New("invalid state")

	// Persistence or object store unavailable, safe to retry with backoff.
	ErrTransientIO = errors.New("transient io error")

	// Auth errors (missing, invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Error is a classified failure. Kind is one of the sentinels above.
type Error struct {
	Kind       error
	Op         string
	DocumentID string
	UserID     string
	// Status is the current lifecycle status, set for ErrInvalidState.
	Status string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.DocumentID != "" {
		fmt.Fprintf(&b, " (document %s)", e.DocumentID)
	}
	if e.UserID != "" {
		fmt.Fprintf(&b, " (user %s)", e.UserID)
	}
	if e.Status != "" {
		fmt.Fprintf(&b, " (status %s)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds a classified error. Use the With* helpers to attach context.
func NewError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) WithDocument(id string) *Error {
	e.DocumentID = id
	return e
}

func (e *Error) WithUser(id string) *Error {
	e.UserID = id
	return e
}

func (e *Error) WithStatus(status string) *Error {
	e.Status = status
	return e
}

// Kinds lists the error kinds in classification order.
var Kinds = []error{ErrValidation, ErrNotFound, ErrUnauthorized, ErrInvalidState, ErrTransientIO}

// KindOf returns the kind sentinel err is classified under, or nil.
func KindOf(err error) error {
	for _, k := range Kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Classify makes sure err carries exactly one kind. Unclassified errors come
// from persistence or the object store and are reported as ErrTransientIO.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != nil {
		return err
	}
	return NewError(ErrTransientIO, op, err)
}
