// Package apperr is the error taxonomy surfaced to API clients.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Unauthenticated
	NotFound
	Conflict
	TooManyRequests
)

func (k Kind) Status() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case TooManyRequests:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// internalMessage replaces the message of every Internal error on the wire.
const internalMessage = "Server error"

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Public is the message safe to show a client.
func (e *Error) Public() string {
	if e.Kind == Internal {
		return internalMessage
	}
	return e.Msg
}

func Invalid(msg string) *Error { return &Error{Kind: Validation, Msg: msg} }

func Unauthorized(msg string, cause error) *Error {
	return &Error{Kind: Unauthenticated, Msg: msg, Err: cause}
}

func Missing() *Error { return &Error{Kind: NotFound, Msg: "Not found"} }

func Duplicate(msg string) *Error { return &Error{Kind: Conflict, Msg: msg} }

func Wrap(err error) *Error { return &Error{Kind: Internal, Msg: "internal", Err: err} }

// From returns err as an *Error, treating anything unrecognized as Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err)
}

func KindOf(err error) Kind { return From(err).Kind }
