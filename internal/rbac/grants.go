package rbac

import (
	"sort"
	"strings"
)

// Grants is an immutable set of permission names held by an actor.
type Grants struct {
	set map[string]struct{}
}

// NewGrants normalizes perms and builds the set. Blank names are dropped.
func NewGrants(perms ...string) Grants {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = normalizePermission(p)
		if p == "" {
			continue
		}
		set[p] = struct{}{}
	}
	return Grants{set: set}
}

// Has reports whether perm is granted. Unknown permissions are never granted.
func (g Grants) Has(perm string) bool {
	if len(g.set) == 0 {
		return false
	}
	_, ok := g.set[normalizePermission(perm)]
	return ok
}

// HasAny reports whether at least one of perms is granted. An empty list is satisfied.
func (g Grants) HasAny(perms ...string) bool {
	required := normalizePermissions(perms)
	if len(required) == 0 {
		return true
	}
	for _, p := range required {
		if _, ok := g.set[p]; ok {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of perms is granted.
func (g Grants) HasAll(perms ...string) bool {
	for _, p := range normalizePermissions(perms) {
		if _, ok := g.set[p]; !ok {
			return false
		}
	}
	return true
}

// Names returns the granted permissions sorted by name.
func (g Grants) Names() []string {
	names := make([]string, 0, len(g.set))
	for p := range g.set {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of granted permissions.
func (g Grants) Len() int {
	return len(g.set)
}

func normalizePermission(p string) string {
	return strings.TrimSpace(strings.ToLower(p))
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = normalizePermission(p)
		if p == "" {
			continue
		}
		if _, seen := unique[p]; seen {
			continue
		}
		unique[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
