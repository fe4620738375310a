package panel

import (
	"sync"

	"github.com/odyssey-erp/userpanel/internal/rbac"
	"github.com/odyssey-erp/userpanel/internal/roles"
	"github.com/odyssey-erp/userpanel/internal/users"
)

// Status is the load state of a Cache.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusReady   Status = "ready"
)

// Cache holds the fetched users and roles. The user slice is replaced on
// every change and never modified in place, so snapshots handed out stay
// valid.
type Cache struct {
	mu        sync.RWMutex
	status    Status
	err       error
	users     []users.User
	roles     []roles.Role
	hierarchy rbac.Hierarchy
}

// NewCache returns an empty cache in the loading state.
func NewCache() *Cache {
	return &Cache{status: StatusLoading, hierarchy: rbac.DefaultHierarchy()}
}

// Status returns the load state.
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Err returns the last load error.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Users returns the current snapshot. Callers must treat it as read-only.
func (c *Cache) Users() []users.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.users
}

// Roles returns the fetched roles in fetch order.
func (c *Cache) Roles() []roles.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roles
}

// RoleNames returns the fetched role names in fetch order.
func (c *Cache) RoleNames() []string {
	return roles.Names(c.Roles())
}

// Hierarchy returns the rank table built from the fetched roles.
func (c *Cache) Hierarchy() rbac.Hierarchy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hierarchy
}

// Find returns the cached user with id.
func (c *Cache) Find(id string) (users.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := indexOf(c.users, id); idx >= 0 {
		return c.users[idx], true
	}
	return users.User{}, false
}

// HasRole reports whether name is one of the fetched roles.
func (c *Cache) HasRole(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

func (c *Cache) setLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusLoading
	c.err = nil
	c.users = nil
	c.roles = nil
}

func (c *Cache) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusError
	c.err = err
	c.users = nil
	c.roles = nil
	c.hierarchy = rbac.DefaultHierarchy()
}

func (c *Cache) setReady(us []users.User, rs []roles.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusReady
	c.err = nil
	c.users = us
	c.roles = rs
	c.hierarchy = roles.HierarchyOf(rs)
}

// apply replaces the user snapshot with fold(current).
func (c *Cache) apply(fold func([]users.User) []users.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = fold(c.users)
}
