// Package dashboard runs several catalog metrics concurrently for a single
// dashboard view.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"gemportal/internal/domain"
)

const defaultParallelism = 4

// MetricRunner executes one named metric.
type MetricRunner interface {
	Execute(ctx context.Context, principal, name string) (*domain.QueryResult, error)
}

// Panel is the result of one metric on a dashboard.
type Panel struct {
	Metric string
	Result *domain.QueryResult
}

// Service fans dashboard metrics out to a MetricRunner.
type Service struct {
	runner      MetricRunner
	parallelism int
	logger      *slog.Logger
}

// NewService creates a dashboard Service. parallelism <= 0 uses 4.
func NewService(runner MetricRunner, parallelism int, logger *slog.Logger) *Service {
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runner: runner, parallelism: parallelism, logger: logger}
}

// Run executes every named metric and returns panels in request order. The
// first failure cancels the remaining metrics and is returned.
func (s *Service) Run(ctx context.Context, principal string, metrics []string) ([]Panel, error) {
	if len(metrics) == 0 {
		return nil, domain.ErrValidation("at least one metric is required")
	}

	panels := make([]Panel, len(metrics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, name := range metrics {
		g.Go(func() error {
			res, err := s.runner.Execute(gctx, principal, name)
			if err != nil {
				return fmt.Errorf("metric %q: %w", name, err)
			}
			panels[i] = Panel{Metric: name, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard run failed", "metrics", len(metrics), "error", err)
		return nil, err
	}
	s.logger.Debug("dashboard run complete", "metrics", len(metrics))
	return panels, nil
}
