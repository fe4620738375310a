package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/userpanel/internal/platform/db"
)

const selectUsers = `SELECT u.id::text, u.email, u.nickname, u.avatar_url, r.name, u.is_active, u.created_at, u.updated_at
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN roles r ON r.id = ur.role_id`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users ordered by creation.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, selectUsers+` ORDER BY u.created_at, u.id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanUser)
}

// GetUser returns a single user.
func (r *Repository) GetUser(ctx context.Context, id string) (User, error) {
	rows, err := r.pool.Query(ctx, selectUsers+` WHERE u.id::text = $1`, id)
	if err != nil {
		return User{}, err
	}
	user, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return user, err
}

// BindRole replaces the role bound to the user.
func (r *Repository) BindRole(ctx context.Context, userID, roleName string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id::text = $1)`, userID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		var roleID int64
		err := tx.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, roleName).Scan(&roleID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRoleNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1::uuid, $2)
ON CONFLICT (user_id) DO UPDATE SET role_id = EXCLUDED.role_id, created_at = NOW()`, userID, roleID)
		if err != nil {
			return fmt.Errorf("upsert user role: %w", err)
		}
		_, err = tx.Exec(ctx, `UPDATE users SET updated_at = NOW() WHERE id::text = $1`, userID)
		return err
	})
}

// DeleteUser removes the user. Roles and sessions cascade.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id::text = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user still referenced", ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (User, error) {
	var (
		user     User
		nickname pgtype.Text
		avatar   pgtype.Text
		role     pgtype.Text
	)
	if err := row.Scan(&user.ID, &user.Email, &nickname, &avatar, &role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, err
	}
	if nickname.Valid || avatar.Valid {
		user.Profile = &Profile{Nickname: nickname.String, AvatarURL: avatar.String}
	}
	if role.Valid {
		user.Role = &RoleRef{Name: role.String}
	}
	return user, nil
}
