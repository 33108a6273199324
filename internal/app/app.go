// Package app wires repositories, services and the HTTP handler for the
// portal.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"gemportal/internal/api"
	"gemportal/internal/catalog"
	"gemportal/internal/config"
	"gemportal/internal/domain"
	"gemportal/internal/engine"
	"gemportal/internal/repository"
	"gemportal/internal/service/dashboard"
	"gemportal/internal/service/facet"
	"gemportal/internal/service/metricquery"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg     *config.Config
	DuckDB  *sql.DB
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups the services the API handler needs.
type Services struct {
	Metrics   *metricquery.Service
	Dashboard *dashboard.Service
	Facets    *facet.Store
	History   *repository.QueryHistoryRepo
}

// App holds the fully-wired application.
type App struct {
	Services Services
	Executor *engine.Executor
	Handler  *api.Handler
}

// New wires all repositories and services from deps. WriteDB may be nil, in
// which case query history is not recorded.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := catalog.LoadMetrics(cfg.MetricsFile)
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	facetDefs, err := LoadFacetDefinitions(cfg.FacetsFile)
	if err != nil {
		return nil, err
	}
	factory := facet.DefaultFactory()
	kinds := make([]domain.FacetKind, 0, len(facetDefs))
	for _, d := range facetDefs {
		kinds = append(kinds, d.Kind)
	}
	if err := factory.Check(kinds...); err != nil {
		return nil, fmt.Errorf("facet definitions: %w", err)
	}

	var history *repository.QueryHistoryRepo
	var historyRepo domain.QueryHistoryRepository
	if deps.WriteDB != nil {
		history = repository.NewQueryHistoryRepo(deps.WriteDB, deps.ReadDB)
		historyRepo = history
	}

	exec := engine.NewExecutor(deps.DuckDB, cfg.QueryTimeout, logger.With("component", "engine"))
	deployment := domain.StaticDeployment{Project: cfg.ProjectName, Deployment: cfg.DeploymentName}

	metricSvc := metricquery.NewService(metrics, exec, historyRepo, deployment, logger.With("component", "metricquery"))
	metricSvc.SetLocation(cfg.Timezone)

	svcs := Services{
		Metrics:   metricSvc,
		Dashboard: dashboard.NewService(metricSvc, cfg.DashboardParallelism, logger.With("component", "dashboard")),
		Facets:    facet.NewStore(facetDefs, factory, cfg.InheritedFacets, logger.With("component", "facet")),
		History:   history,
	}

	logger.InfoContext(ctx, "application wired",
		"project", cfg.ProjectName,
		"deployment", cfg.DeploymentName,
		"metrics", len(metrics.List()),
		"facets", len(facetDefs),
		"history", history != nil)

	return &App{
		Services: svcs,
		Executor: exec,
		Handler:  api.NewHandler(svcs.Metrics, svcs.Dashboard, historyRepo, svcs.Facets),
	}, nil
}

// LoadFacetDefinitions reads facet definitions from path, or returns the
// built-in set when path is empty.
func LoadFacetDefinitions(path string) ([]domain.FacetDescriptor, error) {
	if path == "" {
		return facet.BuiltinDefinitions(), nil
	}
	defs, err := catalog.LoadFacets(path)
	if err != nil {
		return nil, fmt.Errorf("load facets: %w", err)
	}
	return defs, nil
}
