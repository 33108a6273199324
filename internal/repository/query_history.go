package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gemportal/internal/domain"
)

// Compile-time check.
var _ domain.QueryHistoryRepository = (*QueryHistoryRepo)(nil)

// QueryHistoryRepo implements domain.QueryHistoryRepository on SQLite.
type QueryHistoryRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewQueryHistoryRepo creates a QueryHistoryRepo. A nil readDB reads
// through the write pool.
func NewQueryHistoryRepo(writeDB, readDB *sql.DB) *QueryHistoryRepo {
	if readDB == nil {
		readDB = writeDB
	}
	return &QueryHistoryRepo{writeDB: writeDB, readDB: readDB}
}

// Insert stores e and fills in its ID and CreatedAt.
func (r *QueryHistoryRepo) Insert(ctx context.Context, e *domain.QueryHistoryEntry) error {
	if e.Status != domain.QueryStatusSuccess && e.Status != domain.QueryStatusError {
		return domain.ErrValidation("invalid query status %q", e.Status)
	}

	var createdAt string
	err := r.writeDB.QueryRowContext(ctx, `
		INSERT INTO query_history
			(metric_name, principal_name, rendered_sql, status, error_message, duration_ms, rows_returned)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		e.MetricName, e.PrincipalName, e.RenderedSQL, e.Status,
		nullString(e.ErrorMessage), e.DurationMs, nullInt64(e.RowsReturned),
	).Scan(&e.ID, &createdAt)
	if err != nil {
		return mapDBError(err)
	}
	e.CreatedAt = parseTime(createdAt)
	return nil
}

// List returns one page of entries, newest first, with the total match count.
func (r *QueryHistoryRepo) List(ctx context.Context, filter domain.QueryHistoryFilter) ([]domain.QueryHistoryEntry, int64, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.MetricName != nil {
		where = append(where, "metric_name = ?")
		args = append(args, *filter.MetricName)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *filter.Status)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM query_history"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count query history: %w", err)
	}

	pageArgs := append(append([]interface{}{}, args...), filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT id, metric_name, principal_name, rendered_sql, status, error_message, duration_ms, rows_returned, created_at
		FROM query_history`+clause+`
		ORDER BY id DESC
		LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []domain.QueryHistoryEntry{}
	for rows.Next() {
		var (
			e         domain.QueryHistoryEntry
			errMsg    sql.NullString
			returned  sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.MetricName, &e.PrincipalName, &e.RenderedSQL, &e.Status,
			&errMsg, &e.DurationMs, &returned, &createdAt); err != nil {
			return nil, 0, err
		}
		if errMsg.Valid {
			e.ErrorMessage = &errMsg.String
		}
		if returned.Valid {
			e.RowsReturned = &returned.Int64
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
