package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"rosterid/internal/platform/middleware"
	"rosterid/pkg/platform/httputil"
)

const (
	requestTimeout = 30 * time.Second
	checkTimeout   = 2 * time.Second
)

// HealthCheck probes one backend.
type HealthCheck func(ctx context.Context) error

// RouterConfig carries what the router needs beyond the handler.
type RouterConfig struct {
	AdminToken string
	// Metrics serves /metrics; nil leaves the route unmounted.
	Metrics    http.Handler
	Registerer prometheus.Registerer
	Logger     *slog.Logger
	// Checks are run by /healthz; any failure reports 503.
	Checks map[string]HealthCheck
}

// NewRouter wires health, metrics and the token-guarded admin routes.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = h.logger
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestContext)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	if cfg.Registerer != nil {
		r.Use(middleware.Latency(cfg.Registerer))
	}

	r.Get("/healthz", healthz(cfg.Checks, logger))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminToken, logger))
		r.Use(middleware.AdminUser)
		h.Register(r)
	})
	return r
}

func healthz(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		resp := map[string]string{"status": "ok"}
		for name, check := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			err := check(ctx)
			cancel()
			if err != nil {
				logger.WarnContext(r.Context(), "health check failed", "backend", name, "error", err)
				status = http.StatusServiceUnavailable
				resp["status"] = "degraded"
				resp[name] = "unavailable"
				continue
			}
			resp[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
