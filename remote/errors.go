package remote

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a valid empty answer: the server looked and the entity
// does not exist. Callers must not retry.
var ErrNotFound = errors.New("remote: not found")

// ErrAccess reports a transport or protocol failure. The entity may well
// exist; callers may retry later.
var ErrAccess = errors.New("remote: access failed")

// StatusError carries the HTTP status of a failed call while satisfying
// errors.Is(_, ErrAccess).
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

func (e *StatusError) Is(target error) bool { return target == ErrAccess }

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string        { return e.op + ": " + e.err.Error() }
func (e *transportError) Unwrap() error        { return e.err }
func (e *transportError) Is(target error) bool { return target == ErrAccess }

func wrapTransport(op string, err error) error { return &transportError{op: op, err: err} }

// IsRetryable reports whether a failed call may succeed on a later attempt.
// Absence is final; client errors are final except timeouts and throttling.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == 408 || se.StatusCode == 429:
			return true
		case se.StatusCode >= 400 && se.StatusCode < 500:
			return false
		}
		return true
	}
	return errors.Is(err, ErrAccess)
}
