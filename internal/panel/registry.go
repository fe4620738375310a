package panel

import (
	"context"
	"log/slog"
	"time"

	"github.com/Velocidex/ttlcache/v2"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/userpanel/internal/rbac"
)

// ActorResolver loads the role and permissions of a user.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID string) (rbac.Actor, error)
}

// Factory builds a loaded panel for userID.
type Factory func(ctx context.Context, userID string) (*Panel, error)

// NewFactory returns a Factory that resolves the actor and loads the panel.
// A failed load still yields a panel, in the error state.
func NewFactory(actors ActorResolver, p Params) Factory {
	return func(ctx context.Context, userID string) (*Panel, error) {
		actor, err := actors.ResolveActor(ctx, userID)
		if err != nil {
			return nil, err
		}
		panel := New(actor, p)
		_ = panel.Load(ctx)
		return panel, nil
	}
}

// buildTimeout bounds a panel build, which runs detached from the request
// that triggered it.
const buildTimeout = 30 * time.Second

// Registry keeps one panel per session and evicts panels left idle.
type Registry struct {
	lru     *ttlcache.Cache
	factory Factory
	logger  *slog.Logger
	builds  singleflight.Group
}

// NewRegistry builds a Registry. A limit of zero leaves the size unbounded.
func NewRegistry(factory Factory, idle time.Duration, limit int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	lru := ttlcache.NewCache()
	if idle > 0 {
		_ = lru.SetTTL(idle)
	}
	if limit > 0 {
		lru.SetCacheSizeLimit(limit)
	}
	lru.SetExpirationCallback(func(key string, value interface{}) error {
		logger.Debug("panel evicted", slog.String("session", key))
		return nil
	})
	return &Registry{lru: lru, factory: factory, logger: logger}
}

// Get returns the panel cached for key, building a new one when none exists
// or when the cached panel belongs to another user. Concurrent misses for the
// same session share one build. The build outlives a cancelled caller so the
// cached panel never holds a load error caused by one request's deadline.
func (r *Registry) Get(ctx context.Context, key, userID string) (*Panel, error) {
	if p := r.cached(key, userID); p != nil {
		return p, nil
	}
	results := r.builds.DoChan(key+"\x00"+userID, func() (interface{}, error) {
		if p := r.cached(key, userID); p != nil {
			return p, nil
		}
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()
		p, err := r.factory(buildCtx, userID)
		if err != nil {
			return nil, err
		}
		if err := r.lru.Set(key, p); err != nil {
			r.logger.Warn("cache panel", slog.String("session", key), slog.Any("error", err))
		}
		return p, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Panel), nil
	}
}

func (r *Registry) cached(key, userID string) *Panel {
	value, err := r.lru.Get(key)
	if err != nil {
		return nil
	}
	if p, ok := value.(*Panel); ok && p.Actor().ID == userID {
		return p
	}
	return nil
}

// Drop forgets the panel cached for key.
func (r *Registry) Drop(key string) {
	_ = r.lru.Remove(key)
}

// ReleaseSession forgets the panel of a browser session.
func (r *Registry) ReleaseSession(sessionID string) {
	r.Drop(sessionKey(sessionID))
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// Len returns the number of cached panels.
func (r *Registry) Len() int {
	return int(r.lru.GetMetrics().Size)
}

// Close stops the eviction loop.
func (r *Registry) Close() error {
	return r.lru.Close()
}
