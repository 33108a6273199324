package domain

import (
	"context"
	"time"
)

// Query history statuses.
const (
	QueryStatusSuccess = "SUCCESS"
	QueryStatusError   = "ERROR"
)

// QueryResult holds the tabular output of an executed metric query.
type QueryResult struct {
	Columns  []string
	Rows     [][]interface{}
	RowCount int
}

// QueryExecutor runs a rendered query string against the analytics store.
type QueryExecutor interface {
	Query(ctx context.Context, sql string) (*QueryResult, error)
}

// MetricDefinition is a named query template from the metric catalog.
type MetricDefinition struct {
	Name        string   `yaml:"name" validate:"required"`
	Description string   `yaml:"description"`
	Table       string   `yaml:"table" validate:"required"`
	UnionTables []string `yaml:"union_tables" validate:"dive,required"`
	SQL         string   `yaml:"sql" validate:"required"`
}

// MetricRepository looks up metric definitions by name.
type MetricRepository interface {
	Get(name string) (*MetricDefinition, error)
	List() []MetricDefinition
}

// QueryHistoryEntry records one executed metric query.
type QueryHistoryEntry struct {
	ID            int64
	MetricName    string
	PrincipalName string
	RenderedSQL   string
	Status        string
	ErrorMessage  *string
	DurationMs    int64
	RowsReturned  *int64
	CreatedAt     time.Time
}

// QueryHistoryFilter narrows a history listing.
type QueryHistoryFilter struct {
	MetricName *string
	Status     *string
	Page       PageRequest
}

// QueryHistoryRepository persists executed metric queries.
type QueryHistoryRepository interface {
	Insert(ctx context.Context, e *QueryHistoryEntry) error
	List(ctx context.Context, filter QueryHistoryFilter) ([]QueryHistoryEntry, int64, error)
}
