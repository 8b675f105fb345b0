package interest

import (
	"fmt"

	"matchwell/backend/internal/models"
)

// Reason classifies a lifecycle failure the caller can act on.
type Reason string

const (
	ReasonUnauthorized         Reason = "unauthorized"
	ReasonForbidden            Reason = "forbidden"
	ReasonNotFound             Reason = "not_found"
	ReasonInvalidTransition    Reason = "invalid_transition"
	ReasonInvalidAction        Reason = "invalid_action"
	ReasonVerificationRequired Reason = "verification_required"
	ReasonDuplicateInterest    Reason = "duplicate_interest"
)

// Error is a user-facing lifecycle failure. Anything that is not an *Error is a storage
// failure.
type Error struct {
	Reason  Reason
	Message string

	// Existing is set for ReasonDuplicateInterest.
	Existing *models.Interest
	// WouldBeMutual is set for ReasonVerificationRequired when approval would have completed
	// a mutual match.
	WouldBeMutual bool
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Is matches any *Error with the same reason, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Reason == e.Reason
}

var (
	ErrUnauthorized         = &Error{Reason: ReasonUnauthorized}
	ErrForbidden            = &Error{Reason: ReasonForbidden}
	ErrNotFound             = &Error{Reason: ReasonNotFound}
	ErrInvalidTransition    = &Error{Reason: ReasonInvalidTransition}
	ErrInvalidAction        = &Error{Reason: ReasonInvalidAction}
	ErrVerificationRequired = &Error{Reason: ReasonVerificationRequired}
	ErrDuplicateInterest    = &Error{Reason: ReasonDuplicateInterest}
)

func newError(reason Reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
