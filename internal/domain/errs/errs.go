// Package errs defines the error taxonomy shared by stores, engines, services
// and handlers. Callers branch on the kind with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

// Kinds.
var (
	// ErrNotFound: a referenced course, session, user or request does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: a role or enrollment check denied the action.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict: a uniqueness or state-transition rule was violated.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable: the backing store failed; the caller decides about retries.
	ErrUnavailable = errors.New("store unavailable")
	// ErrInvalid: input failed validation.
	ErrInvalid = errors.New("invalid input")
)

// Error carries the failing operation and a kind alongside the cause.
type Error struct {
	Op      string // e.g. "enrollments.Upsert", "service.ChangeRole"
	Kind    error  // one of the kinds above
	Message string // safe to show to a caller
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap exposes the cause, or the kind when there is none.
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches either the kind or anything in the cause chain.
func (e *Error) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// E builds an error of the given kind with a caller-facing message.
func E(op string, kind error, msg string) *Error {
	return &Error{Op: op, Kind: kind, Message: msg}
}

// Wrap attaches op and kind to a cause. A nil cause yields nil.
func Wrap(op string, kind error, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Unavailable wraps a driver failure unless it already carries a kind.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		return err
	}
	return &Error{Op: op, Kind: ErrUnavailable, Err: err}
}

// Kind returns the taxonomy kind of err, or nil when it has none.
func Kind(err error) error {
	for _, k := range []error{ErrNotFound, ErrForbidden, ErrConflict, ErrInvalid, ErrUnavailable} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Message returns the caller-facing message of err, falling back to its kind.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if k := Kind(err); k != nil {
		return k.Error()
	}
	return "internal error"
}

func IsNotFound(err error) bool  { return errors.Is(err, ErrNotFound) }
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
func IsConflict(err error) bool  { return errors.Is(err, ErrConflict) }
func IsInvalid(err error) bool   { return errors.Is(err, ErrInvalid) }
