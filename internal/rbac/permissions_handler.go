package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/userpanel/internal/platform/httpx"
	"github.com/odyssey-erp/userpanel/internal/shared"
)

// PermissionLister lists every known permission.
type PermissionLister interface {
	ListPermissions(ctx context.Context) ([]Permission, error)
}

// ActorSource resolves the role and permissions of a user.
type ActorSource interface {
	ResolveActor(ctx context.Context, userID string) (Actor, error)
}

// PermissionsHandler exposes permission listings.
type PermissionsHandler struct {
	logger *slog.Logger
	lister PermissionLister
	actors ActorSource
	rbac   Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, lister PermissionLister, actors ActorSource, rbac Middleware) *PermissionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionsHandler{logger: logger, lister: lister, actors: actors, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/me", h.myPermissions)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermPermissionsView))
		r.Get("/", h.listPermissions)
	})
}

// MyPermissions is the payload of GET /me.
type MyPermissions struct {
	UserID      string   `json:"user_id"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions"`
}

func (h *PermissionsHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	actor, err := h.actors.ResolveActor(r.Context(), userID)
	if err != nil {
		h.logger.Error("resolve actor", slog.String("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MyPermissions{UserID: userID, Role: actor.Role, Permissions: actor.Grants.Names()})
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.lister.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}
