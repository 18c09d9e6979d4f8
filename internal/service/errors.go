package service

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden means the actor is authenticated but not permitted:
	// wrong role, self-target, or non-owner.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced server, channel or member does not
	// exist, or the actor has no relation to it.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness rule was violated, such as a duplicate
	// "general" channel or an invite code collision.
	ErrConflict = errors.New("conflict")

	// ErrInternal wraps unexpected storage failures. Internal detail is
	// logged, never surfaced to the caller.
	ErrInternal = errors.New("internal error")
)

// ValidationError reports malformed input: an empty name, an invalid enum
// value, or an exceeded length bound. Validation failures are deterministic
// and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
