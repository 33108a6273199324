package metricquery

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemportal/internal/domain"
)

type fakeMetrics map[string]domain.MetricDefinition

func (f fakeMetrics) Get(name string) (*domain.MetricDefinition, error) {
	m, ok := f[name]
	if !ok {
		return nil, domain.ErrNotFound("metric %q not found", name)
	}
	return &m, nil
}

func (f fakeMetrics) List() []domain.MetricDefinition {
	out := make([]domain.MetricDefinition, 0, len(f))
	for _, m := range f {
		out = append(out, m)
	}
	return out
}

type fakeExecutor struct {
	queries []string
	result  *domain.QueryResult
	err     error
}

func (f *fakeExecutor) Query(_ context.Context, sql string) (*domain.QueryResult, error) {
	f.queries = append(f.queries, sql)
	return f.result, f.err
}

type fakeHistory struct {
	entries []domain.QueryHistoryEntry
	err     error
}

func (f *fakeHistory) Insert(_ context.Context, e *domain.QueryHistoryEntry) error {
	f.entries = append(f.entries, *e)
	return f.err
}

func (f *fakeHistory) List(context.Context, domain.QueryHistoryFilter) ([]domain.QueryHistoryEntry, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func newTestService(exec *fakeExecutor, hist *fakeHistory) *Service {
	metrics := fakeMetrics{
		"daily_sessions": {
			Name:  "daily_sessions",
			Table: "sessionstart",
			SQL:   "SELECT count(*) AS n FROM ${table}\nWHERE year = ${year}",
		},
		"all_events": {
			Name:        "all_events",
			Table:       "events",
			UnionTables: []string{"clientinitcomplete", "sessionstart"},
			SQL:         "SELECT count(*) FROM (<ALL_TABLES_UNION>SELECT 1 FROM ${table}</ALL_TABLES_UNION>)",
		},
	}
	var history domain.QueryHistoryRepository
	if hist != nil {
		history = hist
	}
	svc := NewService(metrics, exec, history, testDeployment, slog.New(slog.DiscardHandler))
	svc.SetClock(fixedClock)
	return svc
}

func TestService_RenderMetric(t *testing.T) {
	svc := newTestService(&fakeExecutor{}, nil)

	t.Run("plain", func(t *testing.T) {
		out, err := svc.RenderMetric("daily_sessions")
		require.NoError(t, err)
		assert.Equal(t, `SELECT count(*) AS n FROM "my_game_prod_east"."my_game_prod_east_table_sessionstart" WHERE year = 2024`, out)
	})

	t.Run("union", func(t *testing.T) {
		out, err := svc.RenderMetric("all_events")
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT count(*) FROM (SELECT 1 FROM "my_game_prod_east"."my_game_prod_east_table_clientinitcomplete" UNION SELECT 1 FROM "my_game_prod_east"."my_game_prod_east_table_sessionstart")`,
			out)
	})

	t.Run("unknown metric", func(t *testing.T) {
		_, err := svc.RenderMetric("nope")
		var nf *domain.NotFoundError
		require.True(t, errors.As(err, &nf))
	})
}

func TestService_RenderValidation(t *testing.T) {
	svc := newTestService(&fakeExecutor{}, nil)
	_, err := svc.Render(RenderRequest{Table: "events", SQL: "   "})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestService_ExecuteRecordsHistory(t *testing.T) {
	exec := &fakeExecutor{result: &domain.QueryResult{Columns: []string{"n"}, Rows: [][]interface{}{{int64(3)}}, RowCount: 1}}
	hist := &fakeHistory{}
	svc := newTestService(exec, hist)

	res, err := svc.Execute(context.Background(), "alice", "daily_sessions")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowCount)

	require.Len(t, exec.queries, 1)
	require.Len(t, hist.entries, 1)
	e := hist.entries[0]
	assert.Equal(t, "daily_sessions", e.MetricName)
	assert.Equal(t, "alice", e.PrincipalName)
	assert.Equal(t, exec.queries[0], e.RenderedSQL)
	assert.Equal(t, domain.QueryStatusSuccess, e.Status)
	require.NotNil(t, e.RowsReturned)
	assert.Equal(t, int64(1), *e.RowsReturned)
	assert.Nil(t, e.ErrorMessage)
}

func TestService_ExecuteFailureRecordsError(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("table does not exist")}
	hist := &fakeHistory{}
	svc := newTestService(exec, hist)

	_, err := svc.Execute(context.Background(), "alice", "daily_sessions")
	require.Error(t, err)

	require.Len(t, hist.entries, 1)
	assert.Equal(t, domain.QueryStatusError, hist.entries[0].Status)
	require.NotNil(t, hist.entries[0].ErrorMessage)
	assert.Equal(t, "table does not exist", *hist.entries[0].ErrorMessage)
}

func TestService_ExecuteHistoryFailureDoesNotFailQuery(t *testing.T) {
	exec := &fakeExecutor{result: &domain.QueryResult{}}
	hist := &fakeHistory{err: errors.New("disk full")}
	svc := newTestService(exec, hist)

	_, err := svc.Execute(context.Background(), "alice", "daily_sessions")
	require.NoError(t, err)
}

func TestService_ExecuteRenderErrorSkipsExecutor(t *testing.T) {
	exec := &fakeExecutor{}
	hist := &fakeHistory{}
	svc := newTestService(exec, hist)

	_, err := svc.Execute(context.Background(), "alice", "missing")
	require.Error(t, err)
	assert.Empty(t, exec.queries)
	assert.Empty(t, hist.entries)
}

func TestService_ExecuteWithoutHistory(t *testing.T) {
	exec := &fakeExecutor{result: &domain.QueryResult{RowCount: 0}}
	svc := newTestService(exec, nil)
	svc.SetClock(func() time.Time { return fixedClock() })

	_, err := svc.Execute(context.Background(), "alice", "daily_sessions")
	require.NoError(t, err)
}

func TestService_SetLocation(t *testing.T) {
	svc := newTestService(&fakeExecutor{}, nil)
	svc.SetLocation(time.FixedZone("UTC+2", 2*60*60))

	got, err := svc.Render(RenderRequest{SQL: "${year}-${day} ${hour}"})
	require.NoError(t, err)
	assert.Equal(t, "2024-1 1", got)

	svc.SetLocation(nil)
	got, err = svc.Render(RenderRequest{SQL: "${day}"})
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}
