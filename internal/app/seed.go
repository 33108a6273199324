package app

import (
	"context"
	"fmt"

	"gemportal/internal/domain"
	"gemportal/internal/engine"
	"gemportal/internal/service/metricquery"
)

// SeedDemoTables creates the deployment schema with the two telemetry tables
// every template may reference, plus a few rows. Idempotent.
func SeedDemoTables(ctx context.Context, exec *engine.Executor, deployment domain.DeploymentContext) error {
	tpl := metricquery.New(deployment)
	stmts := []string{
		"CREATE SCHEMA IF NOT EXISTS ${database}",
		"CREATE TABLE IF NOT EXISTS ${table_sessionstart} (p_client_build_id VARCHAR, p_platform VARCHAR, srv_tmutc TIMESTAMP)",
		"CREATE TABLE IF NOT EXISTS ${table_clientinitcomplete} (p_client_build_id VARCHAR, p_platform VARCHAR, srv_tmutc TIMESTAMP)",
	}
	for _, raw := range stmts {
		stmt, err := tpl.Render("", raw)
		if err != nil {
			return fmt.Errorf("render seed statement: %w", err)
		}
		if err := exec.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed %q: %w", stmt, err)
		}
	}

	countSQL, err := tpl.Render("", "SELECT count(*) FROM ${table_sessionstart}")
	if err != nil {
		return err
	}
	res, err := exec.Query(ctx, countSQL)
	if err != nil {
		return err
	}
	if res.RowCount == 1 {
		if n, ok := res.Rows[0][0].(int64); ok && n > 0 {
			return nil
		}
	}

	inserts := []string{
		`INSERT INTO ${table_sessionstart} VALUES
			('1.0.0', 'ios', now() - INTERVAL 2 HOUR),
			('1.0.0', 'android', now() - INTERVAL 1 HOUR),
			('1.1.0', 'ios', now())`,
		`INSERT INTO ${table_clientinitcomplete} VALUES
			('1.0.0', 'ios', now() - INTERVAL 2 HOUR),
			('1.1.0', 'pc', now())`,
	}
	for _, raw := range inserts {
		stmt, err := tpl.Render("", raw)
		if err != nil {
			return err
		}
		if err := exec.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed rows: %w", err)
		}
	}
	return nil
}
