package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/userpanel/internal/platform/httpx"
	"github.com/odyssey-erp/userpanel/internal/shared"
	"github.com/odyssey-erp/userpanel/internal/users"
)

// Handler serves the panel to browser sessions and bearer clients.
type Handler struct {
	logger    *slog.Logger
	registry  *Registry
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, registry *Registry) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, registry: registry, validator: validator.New()}
}

// Response is the body of every panel endpoint.
type Response struct {
	View          View                  `json:"view"`
	Notifications []shared.FlashMessage `json:"notifications"`
	Error         string                `json:"error,omitempty"`
}

// MountRoutes registers panel routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/reload", h.reload)
	r.Post("/users/{id}/role", h.bindRole)
	r.Post("/users/{id}/delete", h.requestDelete)
	r.Post("/delete/confirm", h.confirmDelete)
	r.Post("/delete/cancel", h.cancelDelete)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(context.Context, *Panel) error { return nil })
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(ctx context.Context, p *Panel) error {
		// load failures are rendered through the view
		_ = p.Load(ctx)
		return nil
	})
}

func (h *Handler) bindRole(w http.ResponseWriter, r *http.Request) {
	var input users.BindRoleInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: role is required", httpx.ErrValidation))
		return
	}
	userID := chi.URLParam(r, "id")
	h.with(w, r, func(ctx context.Context, p *Panel) error {
		return p.RequestRoleBinding(ctx, userID, input.Role)
	})
}

func (h *Handler) requestDelete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	h.with(w, r, func(_ context.Context, p *Panel) error {
		return p.RequestDelete(userID)
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(ctx context.Context, p *Panel) error {
		return p.ConfirmDelete(ctx)
	})
}

func (h *Handler) cancelDelete(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(_ context.Context, p *Panel) error {
		p.CancelDelete()
		return nil
	})
}

// with resolves the caller's panel, runs action and renders the resulting
// view together with pending notifications.
func (h *Handler) with(w http.ResponseWriter, r *http.Request, action func(context.Context, *Panel) error) {
	ctx := r.Context()
	key, userID, ok := panelKey(ctx)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	p, err := h.registry.Get(ctx, key, userID)
	if err != nil {
		h.logger.Error("resolve panel failed", slog.String("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	status := http.StatusOK
	resp := Response{Notifications: []shared.FlashMessage{}}
	if err := action(ctx, p); err != nil {
		status = StatusCode(err)
		resp.Error = err.Error()
		if status == http.StatusInternalServerError {
			h.logger.Error("panel action failed", slog.Any("error", err))
			resp.Error = http.StatusText(status)
		}
	}
	resp.View = p.View()
	if sess := shared.SessionFromContext(ctx); sess != nil {
		if flashes := sess.PopFlashes(); len(flashes) > 0 {
			resp.Notifications = flashes
		}
	}
	httpx.JSON(w, status, resp)
}

func panelKey(ctx context.Context) (key, userID string, ok bool) {
	if sess := shared.SessionFromContext(ctx); sess != nil && sess.User() != "" {
		return sessionKey(sess.ID), sess.User(), true
	}
	if id, ok := shared.SubjectFromContext(ctx); ok {
		return "subject:" + id, id, true
	}
	return "", "", false
}

// StatusCode maps panel errors to HTTP status codes.
func StatusCode(err error) int {
	var mutationErr *MutationError
	switch {
	case errors.Is(err, ErrNotLoaded), errors.Is(err, ErrNothingStaged):
		return http.StatusConflict
	case errors.Is(err, ErrUnknownUser):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownRole):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotPermitted):
		return http.StatusForbidden
	case errors.As(err, &mutationErr):
		if status, _ := httpx.StatusOf(mutationErr.Err); status != http.StatusInternalServerError {
			return status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
