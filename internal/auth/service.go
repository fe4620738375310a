package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/userpanel/internal/shared"
)

// SessionRevoker removes live sessions from the session store.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) (int, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	sessions SessionRevoker
}

// NewService constructs a new Service. sessions may be nil when the caller
// never purges sessions.
func NewService(repo Repository, sessions SessionRevoker) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// PurgeUserSessions drops every live session of userID and returns how many
// were removed.
func (s *Service) PurgeUserSessions(ctx context.Context, userID string) (int, error) {
	if s.sessions == nil {
		return 0, nil
	}
	return s.sessions.RevokeUser(ctx, userID)
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
