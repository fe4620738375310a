package panel

import (
	"context"
	"errors"
	"sync"

	"github.com/odyssey-erp/userpanel/internal/users"
)

// FlowState is the state of a DeletionFlow.
type FlowState string

const (
	FlowIdle   FlowState = "idle"
	FlowStaged FlowState = "staged"
)

// Deleter performs the delete once confirmed.
type Deleter interface {
	DeleteUser(ctx context.Context, userID string) error
}

// DeletionFlow stages a single user for deletion until the actor confirms or
// cancels. Staging a new user replaces the previous one.
type DeletionFlow struct {
	mu      sync.Mutex
	deleter Deleter
	staged  *users.User
}

// NewDeletionFlow returns an idle flow.
func NewDeletionFlow(d Deleter) *DeletionFlow {
	return &DeletionFlow{deleter: d}
}

// RequestDelete stages user, replacing any staged user.
func (f *DeletionFlow) RequestDelete(user users.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	staged := user.Clone()
	f.staged = &staged
}

// Cancel discards the staged user without contacting the deleter.
func (f *DeletionFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staged = nil
}

// State returns the current state.
func (f *DeletionFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staged == nil {
		return FlowIdle
	}
	return FlowStaged
}

// Staged returns the staged user, if any.
func (f *DeletionFlow) Staged() (users.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staged == nil {
		return users.User{}, false
	}
	return f.staged.Clone(), true
}

// Confirm deletes the staged user. On success the flow returns to idle; on
// failure the same user stays staged so the actor can retry or cancel. A
// staged user that is no longer in the cache is unstaged, since retrying
// can never succeed.
func (f *DeletionFlow) Confirm(ctx context.Context) error {
	target, ok := f.Staged()
	if !ok {
		return ErrNothingStaged
	}
	if err := f.deleter.DeleteUser(ctx, target.ID); err != nil {
		if errors.Is(err, ErrUnknownUser) {
			f.unstage(target.ID)
		}
		return err
	}
	f.unstage(target.ID)
	return nil
}

// unstage clears the staging only if id is still the staged user. Another
// user may have been staged while the delete was in flight.
func (f *DeletionFlow) unstage(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staged != nil && f.staged.ID == id {
		f.staged = nil
	}
}
