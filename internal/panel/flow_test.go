package panel

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/userpanel/internal/users"
)

type stubDeleter struct {
	calls []string
	err   error
	// hook runs while the delete is in flight
	hook func()
}

func (d *stubDeleter) DeleteUser(_ context.Context, userID string) error {
	d.calls = append(d.calls, userID)
	if d.hook != nil {
		d.hook()
	}
	return d.err
}

func TestFlowStartsIdle(t *testing.T) {
	f := NewDeletionFlow(&stubDeleter{})
	assert.Equal(t, FlowIdle, f.State())
	_, ok := f.Staged()
	assert.False(t, ok)
}

func TestFlowCancelMakesNoRemoteCall(t *testing.T) {
	d := &stubDeleter{}
	f := NewDeletionFlow(d)

	f.RequestDelete(users.User{ID: "2", Email: "b@x"})
	require.Equal(t, FlowStaged, f.State())

	f.Cancel()

	assert.Equal(t, FlowIdle, f.State())
	assert.Empty(t, d.calls)
}

func TestFlowConfirmSuccessReturnsToIdle(t *testing.T) {
	d := &stubDeleter{}
	f := NewDeletionFlow(d)
	f.RequestDelete(users.User{ID: "2"})

	require.NoError(t, f.Confirm(context.Background()))

	assert.Equal(t, FlowIdle, f.State())
	assert.Equal(t, []string{"2"}, d.calls)
}

func TestFlowConfirmFailureStaysStaged(t *testing.T) {
	d := &stubDeleter{err: errors.New("nope")}
	f := NewDeletionFlow(d)
	staged := users.User{ID: "2", Email: "b@x", Role: &users.RoleRef{Name: "member"}}
	f.RequestDelete(staged)

	err := f.Confirm(context.Background())

	require.Error(t, err)
	assert.Equal(t, FlowStaged, f.State())
	got, ok := f.Staged()
	require.True(t, ok)
	assert.Equal(t, staged, got)

	// retry is possible
	d.err = nil
	require.NoError(t, f.Confirm(context.Background()))
	assert.Equal(t, []string{"2", "2"}, d.calls)
	assert.Equal(t, FlowIdle, f.State())
}

func TestFlowConfirmWhileIdle(t *testing.T) {
	d := &stubDeleter{}
	f := NewDeletionFlow(d)
	assert.ErrorIs(t, f.Confirm(context.Background()), ErrNothingStaged)
	assert.Empty(t, d.calls)
}

func TestFlowRequestReplacesStaged(t *testing.T) {
	d := &stubDeleter{}
	f := NewDeletionFlow(d)
	f.RequestDelete(users.User{ID: "1"})
	f.RequestDelete(users.User{ID: "2"})

	got, _ := f.Staged()
	assert.Equal(t, "2", got.ID)

	require.NoError(t, f.Confirm(context.Background()))
	assert.Equal(t, []string{"2"}, d.calls)
}

func TestFlowKeepsNewerStagingAfterConfirm(t *testing.T) {
	d := &stubDeleter{}
	f := NewDeletionFlow(d)
	d.hook = func() { f.RequestDelete(users.User{ID: "3"}) }
	f.RequestDelete(users.User{ID: "2"})

	require.NoError(t, f.Confirm(context.Background()))

	got, ok := f.Staged()
	require.True(t, ok)
	assert.Equal(t, "3", got.ID)
}

func TestFlowStagedIsACopy(t *testing.T) {
	f := NewDeletionFlow(&stubDeleter{})
	u := users.User{ID: "2", Role: &users.RoleRef{Name: "member"}}
	f.RequestDelete(u)
	u.Role.Name = "admin"

	got, _ := f.Staged()
	assert.Equal(t, "member", got.RoleName())
}

func TestFlowUnknownUserIsUnstaged(t *testing.T) {
	d := &stubDeleter{err: fmt.Errorf("%w: %q", ErrUnknownUser, "2")}
	f := NewDeletionFlow(d)
	f.RequestDelete(users.User{ID: "2"})

	err := f.Confirm(context.Background())

	assert.ErrorIs(t, err, ErrUnknownUser)
	assert.Equal(t, FlowIdle, f.State())
}
