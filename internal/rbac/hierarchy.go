package rbac

// Built-in ranks used when a role is missing from the configured table.
// Higher values carry more privilege; unranked roles sit at zero.
const (
	RankNone   = 0
	RankMember = 10
	RankAdmin  = 50
	RankOwner  = 100
)

// Hierarchy maps role names to explicit ranks.
//
// Roles are identified by name only, so their ordering has to be spelled out
// rather than derived from the names themselves.
type Hierarchy struct {
	ranks map[string]int
}

// DefaultHierarchy returns the built-in owner > admin > member table.
func DefaultHierarchy() Hierarchy {
	return Hierarchy{ranks: map[string]int{
		OwnerRole: RankOwner,
		"admin":   RankAdmin,
		"member":  RankMember,
	}}
}

// NewHierarchy layers ranks on top of the default table.
func NewHierarchy(ranks map[string]int) Hierarchy {
	h := DefaultHierarchy()
	for name, rank := range ranks {
		if name == "" {
			continue
		}
		h.ranks[name] = rank
	}
	return h
}

// Rank returns the rank of role. Empty and unknown roles rank lowest.
// The zero Hierarchy behaves like DefaultHierarchy.
func (h Hierarchy) Rank(role string) int {
	if role == "" {
		return RankNone
	}
	if h.ranks == nil {
		h = DefaultHierarchy()
	}
	if rank, ok := h.ranks[role]; ok {
		return rank
	}
	return RankNone
}

// Outranks reports whether role a ranks strictly above role b.
func (h Hierarchy) Outranks(a, b string) bool {
	return h.Rank(a) > h.Rank(b)
}

// AtLeast reports whether role a ranks equal to or above role b.
func (h Hierarchy) AtLeast(a, b string) bool {
	return h.Rank(a) >= h.Rank(b)
}
