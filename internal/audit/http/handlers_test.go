package audithttp

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/userpanel/internal/audit"
	"github.com/odyssey-erp/userpanel/internal/rbac"
	"github.com/odyssey-erp/userpanel/internal/shared"
)

type staticGrants map[string][]string

func (g staticGrants) EffectivePermissions(_ context.Context, userID string) ([]string, error) {
	return g[userID], nil
}

type stubService struct {
	filters audit.TimelineFilters
	result  audit.Result
	rows    []audit.TimelineRow
	err     error
}

func (s *stubService) Timeline(_ context.Context, filters audit.TimelineFilters) (audit.Result, error) {
	s.filters = filters
	return s.result, s.err
}

func (s *stubService) Export(_ context.Context, filters audit.TimelineFilters) ([]audit.TimelineRow, error) {
	s.filters = filters
	return s.rows, s.err
}

func newTestRouter(svc *stubService) http.Handler {
	grants := staticGrants{
		"auditor": {shared.PermAuditView},
		"member":  {shared.PermUsersView},
	}
	h := NewHandler(nil, svc, rbac.Middleware{Source: grants})
	h.now = func() time.Time { return time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id := req.Header.Get("X-Test-User"); id != "" {
				req = req.WithContext(shared.ContextWithSubject(req.Context(), id))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/audit", h.MountRoutes)
	return r
}

func get(h http.Handler, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestTimelineDefaults(t *testing.T) {
	svc := &stubService{result: audit.Result{
		Rows:   []audit.TimelineRow{{Actor: "a@x", Action: shared.AuditUserDeleted, Entity: "user", EntityID: "u-2"}},
		Paging: audit.PagingInfo{Page: 1, PageSize: 20},
	}}
	res := get(newTestRouter(svc), "/api/audit", "auditor")
	require.Equal(t, http.StatusOK, res.Code)

	var body audit.Result
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "u-2", body.Rows[0].EntityID)

	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), svc.filters.From)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), svc.filters.To)
	assert.Equal(t, 1, svc.filters.Page)
	assert.Equal(t, defaultPageSize, svc.filters.PageSize)
}

func TestTimelineFilters(t *testing.T) {
	svc := &stubService{}
	res := get(newTestRouter(svc), "/api/audit?from=2026-03-01&to=2026-03-10&actor=admin&action=user.deleted&page=2&page_size=99", "auditor")
	require.Equal(t, http.StatusOK, res.Code)

	assert.Equal(t, "admin", svc.filters.Actor)
	assert.Equal(t, "user.deleted", svc.filters.Action)
	assert.Equal(t, 2, svc.filters.Page)
	assert.Equal(t, maxPageSize, svc.filters.PageSize)
}

func TestTimelineRejectsBadInput(t *testing.T) {
	router := newTestRouter(&stubService{})
	for _, query := range []string{
		"?from=yesterday",
		"?from=2026-03-10&to=2026-03-01",
		"?from=2025-01-01&to=2026-03-01",
		"?page=0",
		"?page_size=abc",
	} {
		res := get(router, "/api/audit"+query, "auditor")
		assert.Equal(t, http.StatusBadRequest, res.Code, query)
		assert.Equal(t, "application/problem+json", res.Header().Get("Content-Type"), query)
	}
}

func TestTimelineRequiresPermission(t *testing.T) {
	router := newTestRouter(&stubService{})
	assert.Equal(t, http.StatusForbidden, get(router, "/api/audit", "member").Code)
	assert.Equal(t, http.StatusForbidden, get(router, "/api/audit", "").Code)
}

func TestTimelineServiceError(t *testing.T) {
	res := get(newTestRouter(&stubService{err: errors.New("db down")}), "/api/audit", "auditor")
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.NotContains(t, res.Body.String(), "db down")
}

func TestExportCSV(t *testing.T) {
	svc := &stubService{rows: []audit.TimelineRow{{
		At:       time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC),
		Actor:    "admin@example.com",
		Action:   shared.AuditUserRoleBound,
		Entity:   "user",
		EntityID: "u-7",
		Meta:     map[string]any{"role": "admin"},
	}}}
	res := get(newTestRouter(svc), "/api/audit/export.csv", "auditor")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "text/csv; charset=utf-8", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Header().Get("Content-Disposition"), "audit-timeline.csv")

	records, err := csv.NewReader(strings.NewReader(res.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"at", "actor", "action", "entity", "entity_id", "meta"}, records[0])
	assert.Equal(t, "2026-03-14T08:00:00Z", records[1][0])
	assert.Equal(t, "u-7", records[1][4])
	assert.JSONEq(t, `{"role":"admin"}`, records[1][5])
}

func TestExportRateLimitedPerUser(t *testing.T) {
	router := newTestRouter(&stubService{})
	for i := 0; i < rateLimit; i++ {
		require.Equal(t, http.StatusOK, get(router, "/api/audit/export.csv", "auditor").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/api/audit/export.csv", "auditor").Code)
}

func TestWriteCSVEmpty(t *testing.T) {
	out, err := WriteCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "at,actor,action,entity,entity_id,meta\n", string(out))
}
