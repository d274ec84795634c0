package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ErrProfileDisabled signals that the owner's profile-enabled flag
// resolved to disabled. Callers render the same not-found response as
// for a missing account.
var ErrProfileDisabled = fmt.Errorf("profile disabled")

// ErrForbidden signals that the requester may not perform the
// operation.
var ErrForbidden = fmt.Errorf("forbidden")

// ErrInvalidScope rejects a property write whose scope is not one of
// the four defined values. Reads never raise this; an unrecognized
// stored scope degrades to withheld instead.
var ErrInvalidScope = fmt.Errorf("invalid scope")
