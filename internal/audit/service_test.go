package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	rows    []Row
	err     error
	window  WindowParams
	allArgs WindowParams
}

func (s *stubRepo) AuditTimelineWindow(_ context.Context, arg WindowParams) ([]Row, error) {
	s.window = arg
	if s.err != nil {
		return nil, s.err
	}
	end := int(arg.OffsetRows) + int(arg.LimitRows)
	if end > len(s.rows) {
		end = len(s.rows)
	}
	if int(arg.OffsetRows) >= len(s.rows) {
		return nil, nil
	}
	return s.rows[arg.OffsetRows:end], nil
}

func (s *stubRepo) AuditTimelineAll(_ context.Context, arg WindowParams) ([]Row, error) {
	s.allArgs = arg
	return s.rows, s.err
}

func makeRows(n int) []Row {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{
			At:       pgtype.Timestamptz{Time: base.Add(-time.Duration(i) * time.Minute), Valid: true},
			Actor:    "admin@example.com",
			Action:   "user.deleted",
			Entity:   "user",
			EntityID: "u-1",
			Meta:     []byte(`{"role":"member"}`),
		}
	}
	return rows
}

func TestTimelinePaging(t *testing.T) {
	repo := &stubRepo{rows: makeRows(25)}
	svc := NewService(repo)

	first, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, first.Rows, 10)
	assert.True(t, first.Paging.HasNext)
	assert.Equal(t, 2, first.Paging.NextPage)
	assert.Zero(t, first.Paging.PrevPage)
	assert.Equal(t, int32(11), repo.window.LimitRows)

	last, err := svc.Timeline(context.Background(), TimelineFilters{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, last.Rows, 5)
	assert.False(t, last.Paging.HasNext)
	assert.Equal(t, 2, last.Paging.PrevPage)
	assert.Equal(t, int32(20), repo.window.OffsetRows)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	res, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Paging.PageSize)
	assert.Equal(t, 1, res.Paging.Page)

	res, err = svc.Timeline(context.Background(), TimelineFilters{})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Paging.PageSize)
}

func TestTimelineFilterParams(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Timeline(context.Background(), TimelineFilters{From: from, Actor: "  admin ", Entity: ""})
	require.NoError(t, err)

	assert.True(t, repo.window.FromAt.Valid)
	assert.Equal(t, from, repo.window.FromAt.Time)
	assert.False(t, repo.window.ToAt.Valid)
	assert.Equal(t, pgtype.Text{String: "admin", Valid: true}, repo.window.Actor)
	assert.False(t, repo.window.Entity.Valid)
	assert.False(t, repo.window.Action.Valid)
}

func TestTimelineDecodesMeta(t *testing.T) {
	svc := NewService(&stubRepo{rows: makeRows(1)})
	res, err := svc.Timeline(context.Background(), TimelineFilters{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "member", res.Rows[0].Meta["role"])
}

func TestExportPassesFilters(t *testing.T) {
	repo := &stubRepo{rows: makeRows(3)}
	svc := NewService(repo)

	rows, err := svc.Export(context.Background(), TimelineFilters{Action: "user.deleted"})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "user.deleted", repo.allArgs.Action.String)
	assert.Zero(t, repo.allArgs.LimitRows)
}

func TestServiceErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&stubRepo{err: boom})
	_, err := svc.Timeline(context.Background(), TimelineFilters{})
	assert.ErrorIs(t, err, boom)

	_, err = NewService(nil).Export(context.Background(), TimelineFilters{})
	assert.Error(t, err)
}
