// Package engine executes rendered metric queries against DuckDB.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"gemportal/internal/domain"
)

// Compile-time check.
var _ domain.QueryExecutor = (*Executor)(nil)

// Executor implements domain.QueryExecutor over a *sql.DB.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecutor creates an Executor. A zero timeout leaves the caller's
// context deadline in charge.
func NewExecutor(db *sql.DB, timeout time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{db: db, timeout: timeout, logger: logger}
}

// OpenDuckDB opens a DuckDB database at path. An empty path opens an
// in-memory database.
func OpenDuckDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return db, nil
}

// Query implements domain.QueryExecutor.
func (e *Executor) Query(ctx context.Context, query string) (*domain.QueryResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("read query rows: %w", err)
	}
	e.logger.Debug("query executed", "rows", result.RowCount)
	return result, nil
}

// Exec runs a statement that returns no rows, used for seeding tables.
func (e *Executor) Exec(ctx context.Context, stmt string) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	_, err := e.db.ExecContext(ctx, stmt)
	return err
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

func scanRows(rows *sql.Rows) (*domain.QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	resultRows := [][]interface{}{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		resultRows = append(resultRows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.QueryResult{
		Columns:  cols,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}
