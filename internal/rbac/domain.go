package rbac

// Capabilities understood by the user administration panel.
const (
	PermDeleteUser = "user.delete"
	PermManageRole = "role.manage"
	// PermManageAll additionally allows binding the owner role.
	PermManageAll = "all.manage"
)

// OwnerRole is the reserved role name that can only be granted with PermManageAll.
const OwnerRole = "owner"

// Permission represents an atomic capability.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Subject is the part of a user the visibility rules look at.
type Subject struct {
	ID   string
	Role string
}

// Actor describes the authenticated user performing an action.
type Actor struct {
	Subject
	Grants Grants
}

// NewActor builds an Actor from a user id, its role name and granted permissions.
func NewActor(id, role string, perms ...string) Actor {
	return Actor{Subject: Subject{ID: id, Role: role}, Grants: NewGrants(perms...)}
}

// HasPermission reports whether the actor holds perm.
func (a *Actor) HasPermission(perm string) bool {
	if a == nil {
		return false
	}
	return a.Grants.Has(perm)
}
