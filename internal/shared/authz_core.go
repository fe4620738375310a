package shared

// Read permissions for the administration API. Mutating capabilities live in
// the rbac package next to the rules that consume them.
const (
	PermUsersView       = "users.view"
	PermRolesView       = "roles.view"
	PermPermissionsView = "permissions.view"
	PermAuditView       = "audit.view"
)

// CoreScopes lists the read permissions of the administration API.
func CoreScopes() []string {
	return []string{
		PermUsersView,
		PermRolesView,
		PermPermissionsView,
		PermAuditView,
	}
}
