// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation missing or malformed input
	KindValidation
	// KindNotFound missing entity
	KindNotFound
	// KindDuplicate conflicting entity already exists
	KindDuplicate
	// KindRateLimited too many requests for a key
	KindRateLimited
	// KindUpstream non-success status from a third party
	KindUpstream
)

type Error struct {
	Kind    Kind
	Message string
	// Status holds the upstream status token for KindUpstream errors
	Status string
	Err    error
}

func (e *Error) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s (upstream status: %s)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Duplicate(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

func RateLimited(format string, args ...interface{}) *Error {
	return &Error{Kind: KindRateLimited, Message: fmt.Sprintf(format, args...)}
}

func Upstream(status, format string, args ...interface{}) *Error {
	return &Error{Kind: KindUpstream, Status: status, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindUnknown for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
