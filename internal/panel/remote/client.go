// Package remote implements the panel gateway against the HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/odyssey-erp/userpanel/internal/panel"
	"github.com/odyssey-erp/userpanel/internal/platform/httpx"
	"github.com/odyssey-erp/userpanel/internal/rbac"
	"github.com/odyssey-erp/userpanel/internal/roles"
	"github.com/odyssey-erp/userpanel/internal/users"
)

const defaultTimeout = 15 * time.Second

// APIError is a problem response returned by the API.
type APIError struct {
	Status int
	Title  string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Title != "" {
		return e.Title
	}
	return http.StatusText(e.Status)
}

// Unwrap maps the status onto the shared sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return httpx.ErrNotFound
	case http.StatusBadRequest:
		return httpx.ErrValidation
	case http.StatusConflict:
		return httpx.ErrDuplicate
	case http.StatusForbidden:
		return httpx.ErrForbidden
	case http.StatusUnauthorized:
		return httpx.ErrUnauthorized
	}
	return nil
}

// Client talks to the panel API with a bearer token.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient builds a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("remote: base url %q must be absolute", baseURL)
	}
	c := &Client{base: base, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the bearer token in use.
func (c *Client) Token() string { return c.token }

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the body returned by the token endpoint.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges credentials for a bearer token and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/token", tokenRequest{Email: email, Password: password}, &out); err != nil {
		return TokenResponse{}, err
	}
	c.token = out.Token
	return out, nil
}

// FetchUsers lists users.
func (c *Client) FetchUsers(ctx context.Context) ([]users.User, error) {
	var out []users.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchRoles lists roles.
func (c *Client) FetchRoles(ctx context.Context) ([]roles.Role, error) {
	var out []roles.Role
	if err := c.do(ctx, http.MethodGet, "/api/roles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BindRole binds roleName to userID.
func (c *Client) BindRole(ctx context.Context, roleName, userID string) error {
	return c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(userID)+"/role", users.BindRoleInput{Role: roleName}, nil)
}

// DeleteUser deletes userID.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(userID), nil, nil)
}

// ResolveActor returns the authenticated actor. userID is ignored; the token
// decides who the actor is.
func (c *Client) ResolveActor(ctx context.Context, _ string) (rbac.Actor, error) {
	var me rbac.MyPermissions
	if err := c.do(ctx, http.MethodGet, "/api/permissions/me", nil, &me); err != nil {
		return rbac.Actor{}, err
	}
	return rbac.NewActor(me.UserID, me.Role, me.Permissions...), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("remote: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeError(res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(res *http.Response) error {
	apiErr := &APIError{Status: res.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var problem httpx.ProblemDetail
	if json.Unmarshal(data, &problem) == nil && (problem.Title != "" || problem.Detail != "") {
		apiErr.Title = problem.Title
		apiErr.Detail = problem.Detail
		return apiErr
	}
	apiErr.Detail = strings.TrimSpace(string(data))
	return apiErr
}

var (
	_ panel.Gateway       = (*Client)(nil)
	_ panel.ActorResolver = (*Client)(nil)
)
