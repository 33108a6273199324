// Package api exposes metric rendering, dashboards, query history and facet
// sessions over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gemportal/internal/domain"
	"gemportal/internal/middleware"
	"gemportal/internal/service/dashboard"
	"gemportal/internal/service/facet"
	"gemportal/internal/service/metricquery"
)

// MetricService renders and executes catalog metrics.
type MetricService interface {
	Render(req metricquery.RenderRequest) (string, error)
	RenderMetric(name string) (string, error)
	ListMetrics() []domain.MetricDefinition
	Execute(ctx context.Context, principal, name string) (*domain.QueryResult, error)
}

// DashboardService runs several metrics at once.
type DashboardService interface {
	Run(ctx context.Context, principal string, metrics []string) ([]dashboard.Panel, error)
}

// FacetStore owns the live facet sessions.
type FacetStore interface {
	Definitions() []domain.FacetDescriptor
	Open(req facet.OpenRequest) *facet.Session
	Get(id string) (*facet.Session, error)
	Close(id string) error
}

// Handler serves the /v1 API.
type Handler struct {
	metrics    MetricService
	dashboards DashboardService
	history    domain.QueryHistoryRepository
	facets     FacetStore
}

// NewHandler creates a Handler. history may be nil, in which case the
// history endpoint reports an empty list.
func NewHandler(metrics MetricService, dashboards DashboardService, history domain.QueryHistoryRepository, facets FacetStore) *Handler {
	return &Handler{metrics: metrics, dashboards: dashboards, history: history, facets: facets}
}

// RouterConfig configures the middleware stack.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimit          middleware.RateLimitConfig
	Logger             *slog.Logger
}

// NewRouter mounts h under /v1 behind the portal middleware stack. ctx bounds
// background work owned by the middleware.
func NewRouter(ctx context.Context, h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader, middleware.PrincipalHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimiter(ctx, cfg.RateLimit))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Principal)
		h.Mount(r)
	})
	return r
}

// Mount registers the handler routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/render", h.renderTemplate)
	r.Get("/metrics", h.listMetrics)
	r.Get("/metrics/{name}/sql", h.renderMetric)
	r.Post("/metrics/{name}/execute", h.executeMetric)
	r.Post("/dashboards/run", h.runDashboard)
	r.Get("/history", h.listHistory)

	r.Get("/facets/definitions", h.listFacetDefinitions)
	r.Post("/facets/sessions", h.openFacetSession)
	r.Get("/facets/sessions/{id}", h.getFacetSession)
	r.Post("/facets/sessions/{id}/activate/{index}", h.activateFacet)
	r.Delete("/facets/sessions/{id}", h.closeFacetSession)
}
