// internal/errs/errors.go
package errs

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// Kind classifies a failure so transports can map it to a status.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is a malformed or missing input. Nothing was persisted.
	KindValidation
	// KindConflict is a state race or duplicate (lobby full, already a member, cancelled lobby).
	KindConflict
	// KindNotFound is a proposal or record that does not exist.
	KindNotFound
	// KindCollaborator is a failed read or write against persistence.
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

// Error carries a Kind plus an eris-wrapped cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a validation error with the given message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Err: eris.New(fmt.Sprintf(format, args...))}
}

// Conflict returns a conflict error with the given message.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Err: eris.New(fmt.Sprintf(format, args...))}
}

// NotFound returns a not-found error with the given message.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Err: eris.New(fmt.Sprintf(format, args...))}
}

// Collaborator wraps a persistence failure. A nil err yields nil.
func Collaborator(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindCollaborator, Err: eris.Wrap(err, msg)}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsConflict(err error) bool     { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsCollaborator(err error) bool { return KindOf(err) == KindCollaborator }
