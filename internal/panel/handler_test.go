package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/userpanel/internal/platform/httpx"
	"github.com/odyssey-erp/userpanel/internal/rbac"
	"github.com/odyssey-erp/userpanel/internal/shared"
)

func newTestHandler(t *testing.T, gw *fakeGateway, actor rbac.Actor) http.Handler {
	t.Helper()
	params := Params{Gateway: gw, Notifier: LogNotifier{}}
	reg := NewRegistry(NewFactory(stubActors{actor.ID: actor}, params), time.Minute, 0, nil)
	t.Cleanup(func() { _ = reg.Close() })

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(contextWithTestSubject(req.Context(), req.Header.Get("X-Test-User"))))
		})
	})
	r.Route("/panel", NewHandler(nil, reg).MountRoutes)
	return r
}

func call(t *testing.T, h http.Handler, method, path, user, body string) (int, Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	var out Response
	if res.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	}
	return res.Code, out
}

func TestHandlerRequiresIdentity(t *testing.T) {
	h := newTestHandler(t, &fakeGateway{}, rbac.NewActor("root", rbac.OwnerRole))
	code, _ := call(t, h, http.MethodGet, "/panel", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHandlerShowsView(t *testing.T) {
	gw := &fakeGateway{users: scenarioUsers(), roles: defaultRoles}
	h := newTestHandler(t, gw, rbac.NewActor("root", rbac.OwnerRole, rbac.PermDeleteUser))

	code, resp := call(t, h, http.MethodGet, "/panel", "root", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusReady, resp.View.Status)
	assert.Len(t, resp.View.Rows, 2)
	assert.NotNil(t, resp.Notifications)
}

func TestHandlerDeleteFlow(t *testing.T) {
	gw := &fakeGateway{users: scenarioUsers(), roles: defaultRoles, delErr: errors.New("refused")}
	h := newTestHandler(t, gw, rbac.NewActor("root", rbac.OwnerRole, rbac.PermDeleteUser))

	code, resp := call(t, h, http.MethodPost, "/panel/users/2/delete", "root", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.View.Confirmation)
	assert.Equal(t, "2", resp.View.Confirmation.UserID)

	code, resp = call(t, h, http.MethodPost, "/panel/delete/confirm", "root", "")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, resp.Error, "refused")
	require.NotNil(t, resp.View.Confirmation)
	assert.Len(t, resp.View.Rows, 2)

	gw.delErr = nil
	code, resp = call(t, h, http.MethodPost, "/panel/delete/confirm", "root", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, resp.View.Confirmation)
	assert.Len(t, resp.View.Rows, 1)

	code, _ = call(t, h, http.MethodPost, "/panel/delete/confirm", "root", "")
	assert.Equal(t, http.StatusConflict, code)
}

func TestHandlerCancel(t *testing.T) {
	gw := &fakeGateway{users: scenarioUsers(), roles: defaultRoles}
	h := newTestHandler(t, gw, rbac.NewActor("root", rbac.OwnerRole, rbac.PermDeleteUser))

	call(t, h, http.MethodPost, "/panel/users/2/delete", "root", "")
	code, resp := call(t, h, http.MethodPost, "/panel/delete/cancel", "root", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, resp.View.Confirmation)
	assert.Zero(t, gw.remoteCalls())
}

func TestHandlerBindRole(t *testing.T) {
	gw := &fakeGateway{users: scenarioUsers(), roles: defaultRoles}
	h := newTestHandler(t, gw, rbac.NewActor("root", rbac.OwnerRole, rbac.PermManageRole))

	code, _ := call(t, h, http.MethodPost, "/panel/users/1/role", "root", `{"role":""}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, h, http.MethodPost, "/panel/users/1/role", "root", `{"role":"owner"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := call(t, h, http.MethodPost, "/panel/users/1/role", "root", `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admin", resp.View.Rows[0].Role)
	assert.Equal(t, []string{"1=admin"}, gw.bindCalls)
}

func TestHandlerReload(t *testing.T) {
	gw := &fakeGateway{users: scenarioUsers(), roles: defaultRoles}
	h := newTestHandler(t, gw, rbac.NewActor("root", rbac.OwnerRole))

	call(t, h, http.MethodGet, "/panel", "root", "")
	gw.usersErr = errors.New("down")
	code, resp := call(t, h, http.MethodPost, "/panel/reload", "root", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusError, resp.View.Status)
	assert.NotEmpty(t, resp.View.Error)
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNotLoaded, http.StatusConflict},
		{ErrNothingStaged, http.StatusConflict},
		{fmt.Errorf("%w: 9", ErrUnknownUser), http.StatusNotFound},
		{ErrUnknownRole, http.StatusBadRequest},
		{ErrNotPermitted, http.StatusForbidden},
		{&MutationError{Err: httpx.ErrNotFound}, http.StatusNotFound},
		{&MutationError{Err: errors.New("network")}, http.StatusBadGateway},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusCode(tc.err), tc.err.Error())
	}
}

func contextWithTestSubject(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return shared.ContextWithSubject(ctx, id)
}
