package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hostwatch/hostwatch/internal/api/handlers"
	"github.com/hostwatch/hostwatch/internal/api/middleware"
	"github.com/hostwatch/hostwatch/internal/config"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/metrics"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health     *handlers.HealthHandler
	Report     *handlers.ReportHandler
	Host       *handlers.HostHandler
	Alert      *handlers.AlertHandler
	Check      *handlers.CheckHandler
	Evaluation *handlers.EvaluationHandler
}

// New assembles the HTTP surface: the agent-facing report endpoint and
// health probe are public, everything else sits behind the admin token.
func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	if cfg.Server.CORSOrigin != "" {
		r.Use(middleware.CORS([]string{cfg.Server.CORSOrigin}))
	} else {
		r.Use(middleware.DefaultCORS())
	}
	r.Use(middleware.RateLimit(100, 200))

	// Public routes
	r.Group(func(r chi.Router) {
		r.Post("/report", h.Report.Report)
		r.Get("/health", h.Health.Health)
		r.Handle("/metrics", metrics.Handler())
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.Admin.Token))

		r.Route("/api/v1/hosts", func(r chi.Router) {
			r.Get("/", h.Host.List)
			r.Post("/", h.Host.Register)
			r.Get("/{id}", h.Host.Get)
			r.Delete("/{id}", h.Host.Deactivate)
			r.Get("/{id}/samples", h.Host.Samples)
			r.Get("/{id}/checks", h.Check.ListBindings)
			r.Put("/{id}/checks", h.Check.Bind)
			r.Delete("/{id}/checks/{key}", h.Check.Unbind)
		})

		r.Route("/api/v1/alerts", func(r chi.Router) {
			r.Get("/", h.Alert.List)
			r.Get("/summary", h.Alert.Summary)
			r.Get("/{id}", h.Alert.Get)
			r.Post("/{id}/ack", h.Alert.Acknowledge)
		})

		r.Get("/api/v1/checks", h.Check.ListKinds)
		r.Post("/api/v1/evaluate", h.Evaluation.Run)
	})

	return r
}
