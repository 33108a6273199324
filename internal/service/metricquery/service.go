package metricquery

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gemportal/internal/domain"
)

// RenderRequest describes an ad-hoc template render.
type RenderRequest struct {
	Table       string
	SQL         string
	UnionTables []string
}

// Service renders catalog metrics, executes them, and records history.
type Service struct {
	metrics    domain.MetricRepository
	executor   domain.QueryExecutor
	history    domain.QueryHistoryRepository
	deployment domain.DeploymentContext
	clock      func() time.Time
	location   *time.Location
	logger     *slog.Logger
}

// NewService creates a metric query Service. history may be nil, in which
// case executions are not recorded.
func NewService(
	metrics domain.MetricRepository,
	executor domain.QueryExecutor,
	history domain.QueryHistoryRepository,
	deployment domain.DeploymentContext,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		metrics:    metrics,
		executor:   executor,
		history:    history,
		deployment: deployment,
		clock:      time.Now,
		location:   time.Local,
		logger:     logger,
	}
}

// SetClock overrides the clock used for rendering and durations.
func (s *Service) SetClock(now func() time.Time) {
	s.clock = now
}

// SetLocation sets the zone the day and hour placeholders are read in.
func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.location = loc
	}
}

// Render builds the SQL for an ad-hoc template.
func (s *Service) Render(req RenderRequest) (string, error) {
	if strings.TrimSpace(req.SQL) == "" {
		return "", domain.ErrValidation("sql is required")
	}
	tpl := New(s.deployment, WithClock(s.clock), WithLocation(s.location))
	if len(req.UnionTables) > 0 {
		tpl.WithAllTablesUnion(req.UnionTables...)
	}
	return tpl.Render(req.Table, req.SQL)
}

// RenderMetric builds the SQL for a named catalog metric.
func (s *Service) RenderMetric(name string) (string, error) {
	def, err := s.metrics.Get(name)
	if err != nil {
		return "", err
	}
	return s.Render(RenderRequest{Table: def.Table, SQL: def.SQL, UnionTables: def.UnionTables})
}

// ListMetrics returns the catalog's metric definitions.
func (s *Service) ListMetrics() []domain.MetricDefinition {
	return s.metrics.List()
}

// Execute renders and runs a named metric. Every attempt that reaches the
// executor is recorded in query history.
func (s *Service) Execute(ctx context.Context, principal, name string) (*domain.QueryResult, error) {
	rendered, err := s.RenderMetric(name)
	if err != nil {
		return nil, err
	}

	start := s.clock()
	result, execErr := s.executor.Query(ctx, rendered)
	duration := s.clock().Sub(start)

	s.record(ctx, principal, name, rendered, duration, result, execErr)
	if execErr != nil {
		s.logger.Warn("metric query failed", "metric", name, "error", execErr)
		return nil, execErr
	}
	s.logger.Debug("metric query executed", "metric", name, "rows", result.RowCount, "duration", duration)
	return result, nil
}

func (s *Service) record(ctx context.Context, principal, name, rendered string, d time.Duration, result *domain.QueryResult, execErr error) {
	if s.history == nil {
		return
	}
	entry := &domain.QueryHistoryEntry{
		MetricName:    name,
		PrincipalName: principal,
		RenderedSQL:   rendered,
		Status:        domain.QueryStatusSuccess,
		DurationMs:    d.Milliseconds(),
	}
	if execErr != nil {
		msg := execErr.Error()
		entry.Status = domain.QueryStatusError
		entry.ErrorMessage = &msg
	} else if result != nil {
		rows := int64(result.RowCount)
		entry.RowsReturned = &rows
	}
	if err := s.history.Insert(ctx, entry); err != nil {
		s.logger.Warn("record query history", "metric", name, "error", err)
	}
}
