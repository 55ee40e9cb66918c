package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lvrcli/internal/config"
	apierrors "lvrcli/internal/errors"
	"lvrcli/internal/infrastructure"
	custommw "lvrcli/internal/middleware"
)

// RouterDeps carries everything the router wires together.
type RouterDeps struct {
	Config       *config.Config
	Logger       *slog.Logger
	Metrics      *infrastructure.Metrics
	ErrorHandler *apierrors.ErrorHandler
	Reports      *ReportHandler
	Health       *HealthHandler

	// OTel is optional; when set, every request runs inside a server span.
	OTel *custommw.OTelMiddleware
}

// NewRouter assembles the full middleware stack and API routes. Middleware
// order matters: request IDs first so every later layer can log them, the
// recoverer before anything that can panic, rate limiting before the
// handlers do any work.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	if deps.OTel != nil {
		r.Use(deps.OTel.Handler)
	}
	r.Use(custommw.StructuredLogger(deps.Logger))
	r.Use(custommw.Recoverer(deps.Logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	r.Use(custommw.StripSlashes)

	if deps.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: deps.Config.Security.AllowedOrigins,
			Logger:         deps.Logger,
		}))
	}

	if deps.Config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			deps.Config.Security.RateLimit.RPS,
			deps.Config.Security.RateLimit.Burst,
			deps.Logger,
		)
		r.Use(limiter.Handler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", instrument(deps.Metrics, "/api/health", deps.Health.Routes()))
		r.Get("/version", deps.Health.Version)
		r.Mount("/reports", instrument(deps.Metrics, "/api/reports", deps.Reports.Routes()))
	})

	r.Handle("/metrics", deps.Metrics.Handler())

	r.NotFound(deps.ErrorHandler.NotFound)
	r.MethodNotAllowed(deps.ErrorHandler.MethodNotAllowed)

	return r
}

func instrument(metrics *infrastructure.Metrics, path string, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return metrics.InstrumentHandler(path, next)
}
