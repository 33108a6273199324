package api

import (
	"net/http"
	"strconv"
	"time"

	"gemportal/internal/domain"
)

// HistoryEntry is one executed metric query.
type HistoryEntry struct {
	ID            int64     `json:"id"`
	MetricName    string    `json:"metric_name"`
	PrincipalName string    `json:"principal_name"`
	RenderedSQL   string    `json:"rendered_sql"`
	Status        string    `json:"status"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	RowsReturned  *int64    `json:"rows_returned,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryResponse is one page of history.
type HistoryResponse struct {
	Entries       []HistoryEntry `json:"entries"`
	Total         int64          `json:"total"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.QueryHistoryFilter{Page: domain.PageRequest{PageToken: q.Get("page_token")}}
	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, domain.ErrValidation("max_results must be an integer"))
			return
		}
		filter.Page.MaxResults = n
	}
	if v := q.Get("metric"); v != "" {
		filter.MetricName = &v
	}
	if v := q.Get("status"); v != "" {
		if v != domain.QueryStatusSuccess && v != domain.QueryStatusError {
			writeError(w, r, domain.ErrValidation("status must be %s or %s", domain.QueryStatusSuccess, domain.QueryStatusError))
			return
		}
		filter.Status = &v
	}

	resp := HistoryResponse{Entries: []HistoryEntry{}}
	if h.history == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	entries, total, err := h.history.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, HistoryEntry{
			ID:            e.ID,
			MetricName:    e.MetricName,
			PrincipalName: e.PrincipalName,
			RenderedSQL:   e.RenderedSQL,
			Status:        e.Status,
			ErrorMessage:  e.ErrorMessage,
			DurationMs:    e.DurationMs,
			RowsReturned:  e.RowsReturned,
			CreatedAt:     e.CreatedAt,
		})
	}
	resp.Total = total
	resp.NextPageToken = domain.NextPageToken(filter.Page.Offset(), filter.Page.Limit(), total)
	writeJSON(w, http.StatusOK, resp)
}
