package panel

import (
	"context"
	"sync"

	"github.com/odyssey-erp/userpanel/internal/rbac"
	"github.com/odyssey-erp/userpanel/internal/roles"
	"github.com/odyssey-erp/userpanel/internal/users"
	_ "github.com/odyssey-erp/userpanel/testing"
)

type fakeGateway struct {
	mu sync.Mutex

	users    []users.User
	roles    []roles.Role
	usersErr error
	rolesErr error
	bindErr  error
	delErr   error

	bindCalls   []string
	deleteCalls []string
}

func (g *fakeGateway) FetchUsers(context.Context) ([]users.User, error) {
	return g.users, g.usersErr
}

func (g *fakeGateway) FetchRoles(context.Context) ([]roles.Role, error) {
	return g.roles, g.rolesErr
}

func (g *fakeGateway) BindRole(_ context.Context, roleName, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bindCalls = append(g.bindCalls, userID+"="+roleName)
	return g.bindErr
}

func (g *fakeGateway) DeleteUser(_ context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleteCalls = append(g.deleteCalls, userID)
	return g.delErr
}

func (g *fakeGateway) remoteCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.bindCalls) + len(g.deleteCalls)
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notes...)
}

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) ObserveMutation(op, result string) {
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[op+":"+result]++
}

var defaultRoles = []roles.Role{
	{Name: rbac.OwnerRole, Rank: rbac.RankOwner},
	{Name: "admin", Rank: rbac.RankAdmin},
	{Name: "member", Rank: rbac.RankMember},
}

// scenarioUsers is the two-user cache used across the panel tests.
func scenarioUsers() []users.User {
	return []users.User{
		{ID: "1", Email: "a@x"},
		{ID: "2", Email: "b@x", Role: &users.RoleRef{Name: "member"}},
	}
}

func readyCache(us []users.User) *Cache {
	c := NewCache()
	c.setReady(us, defaultRoles)
	return c
}
