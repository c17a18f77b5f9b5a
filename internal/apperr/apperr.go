// Package apperr defines the error kinds the API reports to clients.
// Every operation failure is one of these kinds; the Message is safe to
// return to a client, the wrapped error is for server-side logs only.
package apperr

import "errors"

type Kind int

const (
	Validation Kind = iota // malformed or missing input
	NotFound               // referenced entity does not exist
	NoOp                   // requested mutation would change nothing
	Dependency             // store or notifier failed unexpectedly
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err, or Dependency for anything
// that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Dependency
}

// UserMessage returns the client-safe message for err. Unknown errors
// get a generic message so internal detail never leaks to clients.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

func IsNoOp(err error) bool { return isKind(err, NoOp) }

func IsNotFound(err error) bool { return isKind(err, NotFound) }

func IsValidation(err error) bool { return isKind(err, Validation) }

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
