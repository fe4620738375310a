package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/userpanel/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (User, error)
	BindRole(ctx context.Context, userID, roleName string) error
	DeleteUser(ctx context.Context, id string) error
}

// AuditRecorder stores audit entries for mutations.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SessionPurger revokes the sessions of a deleted user.
type SessionPurger interface {
	PurgeSessions(ctx context.Context, userID string) error
}

// Service handles user business logic.
type Service struct {
	repo   RepositoryPort
	audit  AuditRecorder
	purger SessionPurger
	logger *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithAudit records every successful mutation.
func WithAudit(a AuditRecorder) Option {
	return func(s *Service) { s.audit = a }
}

// WithSessionPurger revokes sessions after a delete.
func WithSessionPurger(p SessionPurger) Option {
	return func(s *Service) { s.purger = p }
}

// WithLogger sets the logger used for follow-up failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, opts ...Option) *Service {
	s := &Service{repo: repo, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.GetUser(ctx, strings.TrimSpace(id))
}

// BindRole binds roleName to the user. actorID is recorded in the audit log.
func (s *Service) BindRole(ctx context.Context, actorID, userID, roleName string) error {
	userID = strings.TrimSpace(userID)
	roleName = strings.TrimSpace(roleName)
	if userID == "" {
		return ErrUserNotFound
	}
	if roleName == "" {
		return ErrRoleNotFound
	}
	if err := s.repo.BindRole(ctx, userID, roleName); err != nil {
		return fmt.Errorf("users: bind role: %w", err)
	}
	s.record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   shared.AuditUserRoleBound,
		Entity:   "user",
		EntityID: userID,
		Meta:     map[string]any{"role": roleName},
	})
	return nil
}

// DeleteUser removes the user and schedules the revocation of its sessions.
func (s *Service) DeleteUser(ctx context.Context, actorID, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserNotFound
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	if s.purger != nil {
		if err := s.purger.PurgeSessions(ctx, userID); err != nil {
			s.logger.Warn("purge sessions failed", slog.String("user_id", userID), slog.Any("error", err))
		}
	}
	s.record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   shared.AuditUserDeleted,
		Entity:   "user",
		EntityID: userID,
	})
	return nil
}

func (s *Service) record(ctx context.Context, entry shared.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", entry.Action), slog.Any("error", err))
	}
}
