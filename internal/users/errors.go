package users

import (
	"fmt"

	"github.com/odyssey-erp/userpanel/internal/platform/httpx"
)

var (
	// ErrUserNotFound indicates the user id is unknown.
	ErrUserNotFound = fmt.Errorf("users: user %w", httpx.ErrNotFound)
	// ErrRoleNotFound indicates the role name is unknown.
	ErrRoleNotFound = fmt.Errorf("users: unknown role: %w", httpx.ErrValidation)
	// ErrConflict indicates the change conflicts with existing data.
	ErrConflict = fmt.Errorf("users: %w", httpx.ErrDuplicate)
)
