package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"qrpass/internal/platform/metrics"
	"qrpass/internal/platform/middleware"
	dErrors "qrpass/pkg/domain-errors"
	"qrpass/pkg/platform/httputil"
	"qrpass/pkg/platform/middleware/metadata"
	"qrpass/pkg/platform/middleware/requesttime"
)

// Module mounts its endpoints on the shared router.
type Module interface {
	Register(r chi.Router)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RouterDeps holds everything the router needs. Nil Health means there is no
// external dependency to probe.
type RouterDeps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Health         HealthChecker
	MetricsHandler http.Handler
	RequestTimeout time.Duration
	// FallbackURL receives requests for unknown paths. Empty answers 404.
	FallbackURL string
	Modules     []Module
}

// NewRouter wires the middleware chain, operational endpoints and every
// module. Handlers stay thin and delegate to services.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.LatencyMiddleware(d.Metrics))
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.Get("/health", healthHandler(d.Health, d.Logger))
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}
	for _, m := range d.Modules {
		m.Register(r)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if d.FallbackURL == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "not found"))
			return
		}
		http.Redirect(w, req, d.FallbackURL, http.StatusFound)
	})
	return r
}

func healthHandler(checker HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Health(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed",
					"request_id", middleware.GetRequestID(r.Context()),
					"error", err,
				)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
