package roles

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/userpanel/internal/rbac"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
}

// Service handles role business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	if roles == nil {
		roles = []Role{}
	}
	return roles, nil
}

// HierarchyOf layers the ranks of roles over the default hierarchy.
func HierarchyOf(roles []Role) rbac.Hierarchy {
	ranks := make(map[string]int, len(roles))
	for _, r := range roles {
		ranks[r.Name] = r.Rank
	}
	return rbac.NewHierarchy(ranks)
}
