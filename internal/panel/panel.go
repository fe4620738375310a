package panel

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/userpanel/internal/rbac"
	"github.com/odyssey-erp/userpanel/internal/roles"
	"github.com/odyssey-erp/userpanel/internal/users"
)

// Options tune how the panel presents users.
type Options struct {
	// UseNickname shows nicknames instead of emails where available.
	UseNickname bool
}

// Params groups the collaborators of a Panel.
type Params struct {
	Gateway   Gateway
	Notifier  Notifier
	Localizer Localizer
	Recorder  MutationRecorder
	Logger    *slog.Logger
	Options   Options
}

// Panel is the user administration panel of one actor.
type Panel struct {
	actor       rbac.Actor
	gateway     Gateway
	cache       *Cache
	coordinator *Coordinator
	flow        *DeletionFlow
	localizer   Localizer
	logger      *slog.Logger
	opts        Options
}

// New builds a panel for actor. Call Load before using it.
func New(actor rbac.Actor, p Params) *Panel {
	if p.Localizer == nil {
		p.Localizer = KeyLocalizer{}
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	logger := p.Logger.With(slog.String("actor_id", actor.ID))
	cache := NewCache()
	coordinator := NewCoordinator(CoordinatorParams{
		Gateway:     p.Gateway,
		Cache:       cache,
		Notifier:    p.Notifier,
		Localizer:   p.Localizer,
		Recorder:    p.Recorder,
		Logger:      logger,
		UseNickname: p.Options.UseNickname,
	})
	return &Panel{
		actor:       actor,
		gateway:     p.Gateway,
		cache:       cache,
		coordinator: coordinator,
		flow:        NewDeletionFlow(coordinator),
		localizer:   p.Localizer,
		logger:      logger,
		opts:        p.Options,
	}
}

// Actor returns the actor snapshot the panel was built for.
func (p *Panel) Actor() rbac.Actor { return p.actor }

// Cache exposes the panel's cache for read access.
func (p *Panel) Cache() *Cache { return p.cache }

// Flow exposes the deletion confirmation flow.
func (p *Panel) Flow() *DeletionFlow { return p.flow }

// Load fetches users and roles concurrently. If either fetch fails the panel
// enters the error state without keeping partial data.
func (p *Panel) Load(ctx context.Context) error {
	p.cache.setLoading()

	var (
		fetchedUsers []users.User
		fetchedRoles []roles.Role
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		us, err := p.gateway.FetchUsers(gctx)
		if err != nil {
			return &LoadError{Resource: "users", Err: err}
		}
		fetchedUsers = us
		return nil
	})
	g.Go(func() error {
		rs, err := p.gateway.FetchRoles(gctx)
		if err != nil {
			return &LoadError{Resource: "roles", Err: err}
		}
		fetchedRoles = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		p.logger.Warn("panel load failed", slog.Any("error", err))
		p.cache.setError(err)
		return err
	}

	unique, dropped := Dedupe(fetchedUsers)
	if len(dropped) > 0 {
		p.logger.Warn("duplicate user ids dropped", slog.Any("ids", dropped))
	}
	p.cache.setReady(unique, fetchedRoles)
	return nil
}

// Menu returns the actions offered for the cached user userID.
func (p *Panel) Menu(userID string) (rbac.Menu, error) {
	if p.cache.Status() != StatusReady {
		return rbac.Menu{}, ErrNotLoaded
	}
	user, ok := p.cache.Find(userID)
	if !ok {
		return rbac.Menu{}, fmt.Errorf("%w: %q", ErrUnknownUser, userID)
	}
	return p.menuFor(user), nil
}

// RequestRoleBinding binds roleName to userID if the actor is offered that
// binding.
func (p *Panel) RequestRoleBinding(ctx context.Context, userID, roleName string) error {
	menu, err := p.Menu(userID)
	if err != nil {
		return err
	}
	if roleName != rbac.OwnerRole && !p.cache.HasRole(roleName) {
		return fmt.Errorf("%w: %q", ErrUnknownRole, roleName)
	}
	if !menu.Offers(roleName) || !rbac.CanBind(&p.actor, roleName) {
		return ErrNotPermitted
	}
	return p.coordinator.BindRole(ctx, roleName, userID)
}

// RequestDelete stages userID for deletion.
func (p *Panel) RequestDelete(userID string) error {
	menu, err := p.Menu(userID)
	if err != nil {
		return err
	}
	if !menu.CanDelete {
		return ErrNotPermitted
	}
	user, _ := p.cache.Find(userID)
	p.flow.RequestDelete(user)
	return nil
}

// ConfirmDelete deletes the staged user.
func (p *Panel) ConfirmDelete(ctx context.Context) error {
	return p.flow.Confirm(ctx)
}

// CancelDelete drops the staged user.
func (p *Panel) CancelDelete() {
	p.flow.Cancel()
}

func (p *Panel) menuFor(user users.User) rbac.Menu {
	target := rbac.Subject{ID: user.ID, Role: user.RoleName()}
	return rbac.BuildMenu(&p.actor, &target, p.cache.RoleNames(), p.cache.Hierarchy())
}
