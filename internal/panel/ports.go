// Package panel keeps a local cache of tenant users in sync with role binding
// and delete mutations, and decides which actions an actor is offered.
package panel

import (
	"context"

	"github.com/odyssey-erp/userpanel/internal/roles"
	"github.com/odyssey-erp/userpanel/internal/users"
)

// Gateway fetches and mutates users and roles on the source of truth.
type Gateway interface {
	FetchUsers(ctx context.Context) ([]users.User, error)
	FetchRoles(ctx context.Context) ([]roles.Role, error)
	BindRole(ctx context.Context, roleName, userID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// NotificationKind distinguishes success from failure notifications.
type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindFailure NotificationKind = "failure"
)

// Icons attached to notifications.
const (
	IconCheck  = "check"
	IconDelete = "delete"
)

// Notification is a fire-and-forget message for the actor.
type Notification struct {
	Kind    NotificationKind
	Icon    string
	Message string
}

// Notifier delivers notifications. Implementations must not block on the
// caller for long and never fail.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Localizer resolves message keys. It is deterministic and side-effect free.
type Localizer interface {
	Localize(key string, args ...any) string
}

// MutationRecorder observes mutation outcomes, typically as metrics.
type MutationRecorder interface {
	ObserveMutation(op, result string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) {}

type nopRecorder struct{}

func (nopRecorder) ObserveMutation(string, string) {}
