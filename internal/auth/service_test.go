package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/userpanel/internal/auth"
	"github.com/odyssey-erp/userpanel/internal/shared"
)

type countingRevoker struct{ users []string }

func (c *countingRevoker) RevokeUser(ctx context.Context, userID string) (int, error) {
	c.users = append(c.users, userID)
	return 3, nil
}

func TestAuthenticateTrimsEmail(t *testing.T) {
	svc := auth.NewService(&stubRepo{user: activeUser(t)}, nil)
	user, err := svc.Authenticate(context.Background(), "  ana@example.com ", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := auth.NewService(&stubRepo{}, nil)
	_, err := svc.Authenticate(context.Background(), "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestPurgeUserSessions(t *testing.T) {
	revoker := &countingRevoker{}
	svc := auth.NewService(&stubRepo{}, revoker)
	n, err := svc.PurgeUserSessions(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"u-1"}, revoker.users)

	n, err = auth.NewService(&stubRepo{}, nil).PurgeUserSessions(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
