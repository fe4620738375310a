package panel

import (
	"context"
	"log/slog"

	"github.com/odyssey-erp/userpanel/internal/shared"
)

// SessionNotifier stores notifications as flash messages on the request
// session. Without a session it hands the notification to Fallback.
type SessionNotifier struct {
	Fallback Notifier
}

// Notify adds n to the session found in ctx.
func (s SessionNotifier) Notify(ctx context.Context, n Notification) {
	if sess := shared.SessionFromContext(ctx); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: string(n.Kind), Icon: n.Icon, Message: n.Message})
		return
	}
	if s.Fallback != nil {
		s.Fallback.Notify(ctx, n)
	}
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs n, failures at warn level.
func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Kind == KindFailure {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "panel notification", slog.String("kind", string(n.Kind)), slog.String("message", n.Message))
}

// Notifiers fans a notification out to every notifier.
type Notifiers []Notifier

// Notify forwards n.
func (ns Notifiers) Notify(ctx context.Context, n Notification) {
	for _, notifier := range ns {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}
