package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gemportal/internal/domain"
	"gemportal/internal/middleware"
	"gemportal/internal/service/metricquery"
)

// RenderRequest is the body of POST /v1/render.
type RenderRequest struct {
	Table       string   `json:"table"`
	SQL         string   `json:"sql"`
	UnionTables []string `json:"union_tables,omitempty"`
}

// RenderResponse carries a rendered query.
type RenderResponse struct {
	Metric string `json:"metric,omitempty"`
	SQL    string `json:"sql"`
}

// Metric describes a catalog entry.
type Metric struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Table       string   `json:"table"`
	UnionTables []string `json:"union_tables,omitempty"`
	SQL         string   `json:"sql"`
}

// QueryResult is the tabular output of an execution.
type QueryResult struct {
	Metric   string          `json:"metric"`
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"row_count"`
}

// DashboardRequest is the body of POST /v1/dashboards/run.
type DashboardRequest struct {
	Metrics []string `json:"metrics"`
}

// DashboardResponse lists panels in request order.
type DashboardResponse struct {
	Panels []QueryResult `json:"panels"`
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request) {
	var body RenderRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	rendered, err := h.metrics.Render(metricquery.RenderRequest{
		Table:       body.Table,
		SQL:         body.SQL,
		UnionTables: body.UnionTables,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{SQL: rendered})
}

func (h *Handler) listMetrics(w http.ResponseWriter, _ *http.Request) {
	defs := h.metrics.ListMetrics()
	out := make([]Metric, 0, len(defs))
	for _, d := range defs {
		out = append(out, Metric{
			Name:        d.Name,
			Description: d.Description,
			Table:       d.Table,
			UnionTables: d.UnionTables,
			SQL:         d.SQL,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"metrics": out})
}

func (h *Handler) renderMetric(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rendered, err := h.metrics.RenderMetric(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{Metric: name, SQL: rendered})
}

func (h *Handler) executeMetric(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	res, err := h.metrics.Execute(r.Context(), middleware.PrincipalFromContext(r.Context()), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResultToAPI(name, res))
}

func (h *Handler) runDashboard(w http.ResponseWriter, r *http.Request) {
	var body DashboardRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	panels, err := h.dashboards.Run(r.Context(), middleware.PrincipalFromContext(r.Context()), body.Metrics)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := DashboardResponse{Panels: make([]QueryResult, 0, len(panels))}
	for _, p := range panels {
		out.Panels = append(out.Panels, queryResultToAPI(p.Metric, p.Result))
	}
	writeJSON(w, http.StatusOK, out)
}

func queryResultToAPI(name string, res *domain.QueryResult) QueryResult {
	out := QueryResult{Metric: name, Columns: []string{}, Rows: [][]interface{}{}}
	if res == nil {
		return out
	}
	if res.Columns != nil {
		out.Columns = res.Columns
	}
	if res.Rows != nil {
		out.Rows = res.Rows
	}
	out.RowCount = res.RowCount
	return out
}
