package panel

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/userpanel/internal/rbac"
	"github.com/odyssey-erp/userpanel/internal/roles"
	"github.com/odyssey-erp/userpanel/internal/shared"
	"github.com/odyssey-erp/userpanel/internal/users"
)

// UserService is the user API the in-process gateway calls.
type UserService interface {
	ListUsers(ctx context.Context) ([]users.User, error)
	BindRole(ctx context.Context, actorID, userID, roleName string) error
	DeleteUser(ctx context.Context, actorID, userID string) error
}

// RoleService is the role API the in-process gateway calls.
type RoleService interface {
	ListRoles(ctx context.Context) ([]roles.Role, error)
}

// ServiceGateway serves the panel from the services of this process. The
// acting user is taken from the request context and its current permissions
// are checked against Grants before every mutation, with the same rules the
// user API routes apply.
type ServiceGateway struct {
	Users  UserService
	Roles  RoleService
	Grants rbac.GrantSource
}

// FetchUsers lists users.
func (g ServiceGateway) FetchUsers(ctx context.Context) ([]users.User, error) {
	return g.Users.ListUsers(ctx)
}

// FetchRoles lists roles.
func (g ServiceGateway) FetchRoles(ctx context.Context) ([]roles.Role, error) {
	return g.Roles.ListRoles(ctx)
}

// BindRole binds roleName to userID. Binding the owner role needs
// PermManageAll, any other role PermManageRole.
func (g ServiceGateway) BindRole(ctx context.Context, roleName, userID string) error {
	actor, err := g.authorize(ctx)
	if err != nil {
		return err
	}
	if !rbac.CanBind(&actor, roleName) {
		return fmt.Errorf("%w: bind %q", ErrNotPermitted, roleName)
	}
	return g.Users.BindRole(ctx, actor.ID, userID, roleName)
}

// DeleteUser deletes userID. The caller needs PermDeleteUser.
func (g ServiceGateway) DeleteUser(ctx context.Context, userID string) error {
	actor, err := g.authorize(ctx)
	if err != nil {
		return err
	}
	if !actor.HasPermission(rbac.PermDeleteUser) {
		return fmt.Errorf("%w: delete user", ErrNotPermitted)
	}
	return g.Users.DeleteUser(ctx, actor.ID, userID)
}

// authorize loads the current permissions of the acting user. A user without
// identity or without a grant source holds no permissions.
func (g ServiceGateway) authorize(ctx context.Context) (rbac.Actor, error) {
	actorID, ok := shared.CurrentUserID(ctx)
	if !ok || actorID == "" || g.Grants == nil {
		return rbac.Actor{}, ErrNotPermitted
	}
	perms, err := g.Grants.EffectivePermissions(ctx, actorID)
	if err != nil {
		return rbac.Actor{}, fmt.Errorf("panel: load permissions: %w", err)
	}
	return rbac.NewActor(actorID, "", perms...), nil
}

var _ Gateway = ServiceGateway{}
