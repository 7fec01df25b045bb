/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  X-Request-ID from the client or a fresh uuid
  2. AccessLog:  zerolog access line + Prometheus request metrics
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the PWA frontend

ROUTE GROUPS:
  /api/records/*        Daily records
  /api/calculate        Stateless calculation
  /api/summary          Period analysis
  /api/compare          Period comparison
  /api/reports/*        Monthly report (JSON or PDF)
  /api/dashboard        Home screen
  /api/profile          Driver profile
  /api/settings         Currency, week start, goals
  /api/export|import    Data portability
  /api/demo/load        Demo data
  /api/reset            Delete everything
  /metrics              Prometheus (when enabled)

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: RequestID and AccessLog
  - cli/serve.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/warp/ridebook/config"
	"github.com/warp/ridebook/metrics"
)

// NewRouter creates a new router with all routes configured. rec may be nil.
func NewRouter(h *Handler, cfg config.Config, rec *metrics.Recorder, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(RequestID)
	r.Use(AccessLog(log, rec))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Record routes
		r.Route("/records", func(r chi.Router) {
			r.Get("/", h.ListRecords)
			r.Post("/", h.CreateRecord)
			r.Get("/{date}", h.GetRecord)
			r.Put("/{date}", h.PutRecord)
			r.Delete("/{date}", h.DeleteRecord)
		})

		r.Post("/calculate", h.Calculate)
		r.Get("/summary", h.Summary)
		r.Get("/compare", h.Compare)
		r.Get("/reports/monthly/{year}/{month}", h.MonthlyReport)
		r.Get("/dashboard", h.Dashboard)

		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.PutProfile)
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.PutSettings)

		// Data routes
		r.Get("/export", h.Export)
		r.Post("/import", h.Import)
		r.Post("/demo/load", h.LoadDemo)
		r.Post("/reset", h.ResetDatabase)
	})

	if cfg.Metrics.Enabled && rec != nil {
		r.Handle(cfg.Metrics.Path, rec.Handler())
	}

	return r
}
