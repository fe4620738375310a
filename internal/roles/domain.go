package roles

// Role represents an assignable role. Rank orders roles for hierarchy checks;
// higher ranks outrank lower ones.
type Role struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rank        int    `json:"rank"`
}

// Names returns the role names in order.
func Names(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Name)
	}
	return out
}
