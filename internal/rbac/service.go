package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/userpanel/internal/shared"
)

// Service resolves permissions from PostgreSQL.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// ListPermissions returns all permissions ordered by name.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("rbac: list permissions: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Permission, error) {
		var p Permission
		err := row.Scan(&p.ID, &p.Name, &p.Description)
		return p, err
	})
}

// EnsureScopes registers every permission the panel checks. Existing
// descriptions are kept.
func (s *Service) EnsureScopes(ctx context.Context) error {
	for _, name := range Scopes() {
		if _, err := s.EnsurePermission(ctx, name, ""); err != nil {
			return err
		}
	}
	return nil
}

// EnsurePermission upserts a permission. A blank description keeps the
// stored one.
func (s *Service) EnsurePermission(ctx context.Context, name, description string) (Permission, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return Permission{}, errors.New("rbac: permission name required")
	}
	var p Permission
	err := s.pool.QueryRow(ctx, `
		INSERT INTO permissions (name, description) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		SET description = COALESCE(NULLIF(EXCLUDED.description, ''), permissions.description)
		RETURNING id, name, description`, name, strings.TrimSpace(description)).
		Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		return Permission{}, fmt.Errorf("rbac: ensure permission: %w", err)
	}
	return p, nil
}

// EffectivePermissions returns deduplicated permission names for a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT p.name
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id::text = $1
		ORDER BY p.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: effective permissions: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// RoleOf returns the role name bound to a user, or "" when unassigned.
func (s *Service) RoleOf(ctx context.Context, userID string) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx, `
		SELECT r.name FROM user_roles ur JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id::text = $1`, userID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("rbac: role of user: %w", err)
	}
	return name, nil
}

// ResolveActor loads the actor snapshot for userID.
func (s *Service) ResolveActor(ctx context.Context, userID string) (Actor, error) {
	role, err := s.RoleOf(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	perms, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	return NewActor(userID, role, perms...), nil
}

// Scopes lists the read and mutation permissions of the panel.
func Scopes() []string {
	return append(shared.CoreScopes(), PermDeleteUser, PermManageRole, PermManageAll)
}
