package panel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/userpanel/internal/rbac"
	"github.com/odyssey-erp/userpanel/internal/users"
)

// Mutation operation names used in errors, logs and metrics.
const (
	OpBindRole   = "bind_role"
	OpDeleteUser = "delete_user"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// CoordinatorParams groups the collaborators of a Coordinator. Only Gateway
// and Cache are required.
type CoordinatorParams struct {
	Gateway     Gateway
	Cache       *Cache
	Notifier    Notifier
	Localizer   Localizer
	Recorder    MutationRecorder
	Logger      *slog.Logger
	UseNickname bool
}

// Coordinator runs mutations against the gateway and folds successful results
// into the cache. No lock is held while a remote call is in flight.
type Coordinator struct {
	gateway     Gateway
	cache       *Cache
	notifier    Notifier
	localizer   Localizer
	recorder    MutationRecorder
	logger      *slog.Logger
	useNickname bool
}

// NewCoordinator builds a Coordinator.
func NewCoordinator(p CoordinatorParams) *Coordinator {
	c := &Coordinator{
		gateway:     p.Gateway,
		cache:       p.Cache,
		notifier:    p.Notifier,
		localizer:   p.Localizer,
		recorder:    p.Recorder,
		logger:      p.Logger,
		useNickname: p.UseNickname,
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.localizer == nil {
		c.localizer = KeyLocalizer{}
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// BindRole binds roleName to userID remotely and, on success, folds the new
// role into the cached entry.
func (c *Coordinator) BindRole(ctx context.Context, roleName, userID string) error {
	user, err := c.lookup(userID)
	if err != nil {
		return err
	}
	if roleName != rbac.OwnerRole && !c.cache.HasRole(roleName) {
		return fmt.Errorf("%w: %q", ErrUnknownRole, roleName)
	}

	if err := c.gateway.BindRole(ctx, roleName, userID); err != nil {
		return c.fail(ctx, OpBindRole, userID, err)
	}
	c.cache.apply(func(in []users.User) []users.User {
		return FoldRoleBinding(in, userID, roleName)
	})
	c.succeed(ctx, OpBindRole, userID, c.localizer.Localize(MsgRoleBound, user.DisplayName(c.useNickname), roleName))
	return nil
}

// DeleteUser deletes userID remotely and, on success, removes it from the
// cache.
func (c *Coordinator) DeleteUser(ctx context.Context, userID string) error {
	user, err := c.lookup(userID)
	if err != nil {
		return err
	}

	if err := c.gateway.DeleteUser(ctx, userID); err != nil {
		return c.fail(ctx, OpDeleteUser, userID, err)
	}
	c.cache.apply(func(in []users.User) []users.User {
		return FoldDelete(in, userID)
	})
	c.succeed(ctx, OpDeleteUser, userID, c.localizer.Localize(MsgUserDeleted, user.DisplayName(c.useNickname)))
	return nil
}

func (c *Coordinator) lookup(userID string) (users.User, error) {
	if c.cache.Status() != StatusReady {
		return users.User{}, ErrNotLoaded
	}
	user, ok := c.cache.Find(userID)
	if !ok {
		return users.User{}, fmt.Errorf("%w: %q", ErrUnknownUser, userID)
	}
	return user, nil
}

func (c *Coordinator) succeed(ctx context.Context, op, userID, message string) {
	c.recorder.ObserveMutation(op, resultSuccess)
	c.logger.Info("panel mutation applied", slog.String("op", op), slog.String("user_id", userID))
	c.notifier.Notify(ctx, Notification{Kind: KindSuccess, Icon: IconCheck, Message: message})
}

func (c *Coordinator) fail(ctx context.Context, op, userID string, err error) error {
	c.recorder.ObserveMutation(op, resultFailure)
	c.logger.Warn("panel mutation failed", slog.String("op", op), slog.String("user_id", userID), slog.Any("error", err))
	c.notifier.Notify(ctx, Notification{Kind: KindFailure, Icon: IconDelete, Message: err.Error()})
	return &MutationError{Op: op, UserID: userID, Err: err}
}
