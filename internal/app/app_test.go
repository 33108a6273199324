package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemportal/internal/config"
	"gemportal/internal/db"
	"gemportal/internal/domain"
	"gemportal/internal/engine"
	"gemportal/internal/middleware"
	"gemportal/internal/service/facet"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	metrics := filepath.Join(dir, "metrics.yaml")
	require.NoError(t, os.WriteFile(metrics, []byte(`
metrics:
  - name: builds
    table: sessionstart
    union_tables: [sessionstart, clientinitcomplete]
    sql: |
      SELECT count(*) AS builds FROM (
        <ALL_TABLES_UNION>SELECT p_client_build_id FROM ${table}</ALL_TABLES_UNION>
      )
`), 0o600))
	return &config.Config{
		ProjectName:          "My-Game",
		DeploymentName:       "Prod-East",
		MetricsFile:          metrics,
		InheritedFacets:      true,
		DashboardParallelism: 2,
		RateLimitRPS:         100,
		RateLimitBurst:       100,
	}
}

func openDuck(t *testing.T) *engine.Executor {
	t.Helper()
	duck, err := engine.OpenDuckDB("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = duck.Close() })
	return engine.NewExecutor(duck, 0, nil)
}

func TestNew_WiresServices(t *testing.T) {
	cfg := testConfig(t)
	duck, err := engine.OpenDuckDB("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = duck.Close() })
	writeDB, readDB := db.OpenTestSQLite(t)

	a, err := New(context.Background(), Deps{Cfg: cfg, DuckDB: duck, WriteDB: writeDB, ReadDB: readDB, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	require.NotNil(t, a.Services.History)

	deployment := domain.StaticDeployment{Project: cfg.ProjectName, Deployment: cfg.DeploymentName}
	require.NoError(t, SeedDemoTables(context.Background(), a.Executor, deployment))

	res, err := a.Services.Metrics.Execute(context.Background(), middleware.AnonymousPrincipal, "builds")
	require.NoError(t, err)
	require.Equal(t, 1, res.RowCount)
	assert.EqualValues(t, 2, res.Rows[0][0])

	entries, total, err := a.Services.History.List(context.Background(), domain.QueryHistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "builds", entries[0].MetricName)

	assert.Len(t, a.Services.Facets.Definitions(), 2)
}

func TestNew_FacetsFileWithRepeatedTitle(t *testing.T) {
	cfg := testConfig(t)
	cfg.FacetsFile = filepath.Join(t.TempDir(), "facets.yaml")
	require.NoError(t, os.WriteFile(cfg.FacetsFile, []byte(`
facets:
  - title: Log
    kind: log
    order: 2
    required_context_keys: [auditStream]
  - title: Log
    kind: log
    order: 1
    required_context_keys: [physicalResourceId]
`), 0o600))
	duck, err := engine.OpenDuckDB("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = duck.Close() })

	a, err := New(context.Background(), Deps{Cfg: cfg, DuckDB: duck, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)

	s := a.Services.Facets.Open(facet.OpenRequest{
		HostTabs: []string{"Overview"},
		Context: map[string]any{
			"auditStream":                       "audit-1",
			domain.ContextKeyPhysicalResourceID: "fn-1",
		},
	})
	assert.Equal(t, []string{"Overview", "Log", "Log"}, s.Tabs())

	facets := s.Facets()
	require.Len(t, facets, 2)
	assert.Equal(t, 1, facets[0].Descriptor.Order)
	assert.Equal(t, "fn-1", facets[0].Data[domain.ContextKeyPhysicalResourceID])
	assert.Equal(t, 2, facets[1].Descriptor.Order)
	assert.Equal(t, "audit-1", facets[1].Data["auditStream"])
}

func TestNew_WithoutHistory(t *testing.T) {
	cfg := testConfig(t)
	duck, err := engine.OpenDuckDB("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = duck.Close() })

	a, err := New(context.Background(), Deps{Cfg: cfg, DuckDB: duck})
	require.NoError(t, err)
	assert.Nil(t, a.Services.History)
}

func TestNew_RejectsUnknownFacetKind(t *testing.T) {
	cfg := testConfig(t)
	cfg.FacetsFile = filepath.Join(t.TempDir(), "facets.yaml")
	require.NoError(t, os.WriteFile(cfg.FacetsFile, []byte("facets:\n  - {title: Chart, kind: chart, required_context_keys: [x]}\n"), 0o600))

	_, err := New(context.Background(), Deps{Cfg: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"chart"`)
}

func TestNew_BadMetricsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(context.Background(), Deps{Cfg: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load metrics")
}

func TestSeedDemoTables_Idempotent(t *testing.T) {
	exec := openDuck(t)
	deployment := domain.StaticDeployment{Project: "p", Deployment: "d"}

	require.NoError(t, SeedDemoTables(context.Background(), exec, deployment))
	require.NoError(t, SeedDemoTables(context.Background(), exec, deployment))

	res, err := exec.Query(context.Background(), `SELECT count(*) FROM "p_d"."p_d_table_sessionstart"`)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Rows[0][0])
}
