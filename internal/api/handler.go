// Package api exposes the engine over HTTP as a JSON API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"worktime/internal/domain"
	"worktime/internal/middleware"
	"worktime/internal/service/worktime"
)

// StatsCollector aggregates engine-produced data for GET /v1/stats.
type StatsCollector interface {
	Collect(ctx context.Context, from, to domain.Date) (*domain.StatsReport, error)
}

// Handler carries the dependencies of all HTTP endpoints.
type Handler struct {
	engine    *worktime.Engine
	cleaner   *worktime.Cleaner
	ingest    *worktime.Ingestor
	stats     StatsCollector
	sessions  domain.SessionRepository
	summaries domain.SummaryRepository
	audit     domain.AuditRepository
	employees domain.EmployeeRepository
	log       *slog.Logger
	loc       *time.Location
}

type HandlerDeps struct {
	Engine    *worktime.Engine
	Cleaner   *worktime.Cleaner
	Ingest    *worktime.Ingestor
	Stats     StatsCollector
	Sessions  domain.SessionRepository
	Summaries domain.SummaryRepository
	Audit     domain.AuditRepository
	Employees domain.EmployeeRepository
	Log       *slog.Logger
	Location  *time.Location
}

func NewHandler(d HandlerDeps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		engine:    d.Engine,
		cleaner:   d.Cleaner,
		ingest:    d.Ingest,
		stats:     d.Stats,
		sessions:  d.Sessions,
		summaries: d.Summaries,
		audit:     d.Audit,
		employees: d.Employees,
		log:       d.Log.With("component", "api"),
		loc:       loc,
	}
}

// RouterConfig is the transport-level configuration of the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	Shutdown           <-chan struct{}
}

// NewRouter assembles the middleware stack and all routes.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(h.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if cfg.RateLimitRPS > 0 {
		rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Shutdown)
		r.Use(rl.Handler)
	}

	r.Get("/healthz", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/events", h.handleIngestEvent)

		r.Route("/processing", func(r chi.Router) {
			r.Post("/run", h.handleRun)
			r.Post("/rebuild", h.handleRebuild)
			r.Post("/cleanup", h.handleCleanup)
			r.Post("/reprocess", h.handleReprocess)
		})

		r.Route("/employees/{employeeID}", func(r chi.Router) {
			r.Get("/sessions", h.handleListSessions)
			r.Get("/summaries", h.handleListSummaries)
		})

		r.Post("/sessions/{sessionID}/close", h.handleCloseSession)
		r.Get("/audit", h.handleListAudit)
		r.Get("/stats", h.handleStats)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
