package panel

import "github.com/odyssey-erp/userpanel/internal/users"

// FoldRoleBinding returns the collection after userID was bound to roleName.
// Only the matching entry changes; the input is never modified. When no entry
// matches the input is returned as is.
func FoldRoleBinding(in []users.User, userID, roleName string) []users.User {
	idx := indexOf(in, userID)
	if idx < 0 {
		return in
	}
	out := make([]users.User, len(in))
	copy(out, in)
	updated := in[idx].Clone()
	updated.Role = &users.RoleRef{Name: roleName}
	out[idx] = updated
	return out
}

// FoldDelete returns the collection without userID, keeping the relative
// order of the rest. When no entry matches the input is returned as is.
func FoldDelete(in []users.User, userID string) []users.User {
	idx := indexOf(in, userID)
	if idx < 0 {
		return in
	}
	out := make([]users.User, 0, len(in)-1)
	for _, u := range in {
		if u.ID == userID {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Dedupe keeps the first entry for every id and reports the ids it dropped.
func Dedupe(in []users.User) ([]users.User, []string) {
	seen := make(map[string]struct{}, len(in))
	out := make([]users.User, 0, len(in))
	var dropped []string
	for _, u := range in {
		if _, dup := seen[u.ID]; dup {
			dropped = append(dropped, u.ID)
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}
	return out, dropped
}

func indexOf(in []users.User, id string) int {
	for i := range in {
		if in[i].ID == id {
			return i
		}
	}
	return -1
}
