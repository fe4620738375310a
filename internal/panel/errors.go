package panel

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded is returned when an operation needs a ready cache.
	ErrNotLoaded = errors.New("panel: users not loaded")
	// ErrUnknownUser is returned when the user id is not in the cache.
	ErrUnknownUser = errors.New("panel: unknown user")
	// ErrUnknownRole is returned when the role is neither known nor the owner role.
	ErrUnknownRole = errors.New("panel: unknown role")
	// ErrNotPermitted is returned when the actor is not offered the action.
	ErrNotPermitted = errors.New("panel: action not permitted")
	// ErrNothingStaged is returned by Confirm when no user is staged.
	ErrNothingStaged = errors.New("panel: no user staged for deletion")
)

// LoadError reports a failed fetch of users or roles.
type LoadError struct {
	Resource string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("panel: load %s: %v", e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MutationError reports a failed remote role binding or delete.
type MutationError struct {
	Op     string
	UserID string
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("panel: %s user %s: %v", e.Op, e.UserID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
