package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/userpanel/internal/auth"
	"github.com/odyssey-erp/userpanel/internal/shared"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Minute)
	token, expires, err := tm.Issue("u-7")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)

	subject, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-7", subject)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := auth.NewTokenManager("one", time.Minute).Issue("u-7")
	require.NoError(t, err)
	_, err = auth.NewTokenManager("two", time.Minute).Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenRejectsExpired(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Millisecond)
	token, _, err := tm.Issue("u-7")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenRejectsForeignIssuerAndMissingExpiry(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "u-7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := foreign.SignedString([]byte("secret"))
	require.NoError(t, err)
	tm := auth.NewTokenManager("secret", time.Hour)
	_, err = tm.Parse(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  "userpanel",
		Subject: "u-7",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.Parse(noExpiry)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestBearerMiddleware(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	var seen string
	h := tm.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = shared.SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, seen)

	token, _, err := tm.Issue("u-9")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-9", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestBearerTokenParsing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := auth.BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Basic abc")
	_, ok = auth.BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "bearer  tok ")
	token, ok := auth.BearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
}
