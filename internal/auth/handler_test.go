package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/userpanel/internal/auth"
	"github.com/odyssey-erp/userpanel/internal/shared"
	_ "github.com/odyssey-erp/userpanel/testing"
)

const testPassword = "correct-horse"

type stubRepo struct {
	user    *auth.User
	created []string
	deleted []string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	s.created = append(s.created, id+"|"+userID)
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func activeUser(t *testing.T) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	return &auth.User{ID: "u-1", Email: "ana@example.com", PasswordHash: hash, IsActive: true}
}

type recordingReleaser struct {
	released []string
}

func (r *recordingReleaser) ReleaseSession(sessionID string) {
	r.released = append(r.released, sessionID)
}

type fixture struct {
	repo     *stubRepo
	releaser *recordingReleaser
	sessions *shared.SessionManager
	tokens   *auth.TokenManager
	router   http.Handler
}

func newFixture(t *testing.T, user *auth.User) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	repo := &stubRepo{user: user}
	tokens := auth.NewTokenManager("jwt-secret", time.Hour)
	releaser := &recordingReleaser{}
	handler := auth.NewHandler(nil, auth.NewService(repo, sessions), tokens, sessions, shared.NewCSRFManager("csrf")).
		WithSessionReleaser(releaser)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(w, req.WithContext(ctx))
			require.NoError(t, sessions.Commit(ctx, httptest.NewRecorder(), req, sess))
		})
	})
	r.Route("/auth", handler.MountRoutes)
	return &fixture{repo: repo, releaser: releaser, sessions: sessions, tokens: tokens, router: r}
}

func (f *fixture) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccessBindsSession(t *testing.T) {
	f := newFixture(t, activeUser(t))

	rec := f.post("/auth/login", `{"email":"ana@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u-1", body.UserID)
	require.Len(t, f.repo.created, 1)
	assert.True(t, strings.HasSuffix(f.repo.created[0], "|u-1"))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixture(t, activeUser(t))
	rec := f.post("/auth/login", `{"email":"ana@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.repo.created)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	user := activeUser(t)
	user.IsActive = false
	f := newFixture(t, user)
	rec := f.post("/auth/login", `{"email":"ana@example.com","password":"correct-horse"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t, activeUser(t))

	rec := f.post("/auth/login", `{"email":"not-an-email","password":"correct-horse"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email failed on email")

	rec = f.post("/auth/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueTokenReturnsParsableToken(t *testing.T) {
	f := newFixture(t, activeUser(t))
	rec := f.post("/auth/token", `{"email":"ana@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body auth.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	subject, err := f.tokens.Parse(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", subject)
	assert.True(t, body.ExpiresAt.After(time.Now()))
}

func TestLogoutRemovesSession(t *testing.T) {
	f := newFixture(t, activeUser(t))
	rec := f.post("/auth/logout", ``)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, f.repo.deleted, 1)
	assert.Equal(t, f.repo.deleted, f.releaser.released)
}

func TestCSRFEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/csrf", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["csrf_token"])
}
