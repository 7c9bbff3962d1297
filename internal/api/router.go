package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vibecheck-app/vibecheck/internal/config"
	"github.com/vibecheck-app/vibecheck/internal/database"
	"github.com/vibecheck-app/vibecheck/internal/events"
	"github.com/vibecheck-app/vibecheck/internal/middleware"
)

// RouteRegistrar is implemented by feature handlers that mount their own
// routes.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// HealthDeps are the backing services the health endpoint reports on. Redis
// and NATS may be nil.
type HealthDeps struct {
	Pool  *pgxpool.Pool
	Redis *goredis.Client
	NATS  *events.Client
}

// NewRouter assembles the HTTP surface: middleware stack, health and
// metrics endpoints, and the versioned API routes.
func NewRouter(cfg *config.Config, deps HealthDeps, handlers ...RouteRegistrar) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(middleware.CORS(cfg.CORS.AllowedOrigins)))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		JSONMessage(w, http.StatusOK, "vibecheck api is running")
	})
	r.Get("/health", healthHandler(deps))
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		JSONMessage(w, http.StatusOK, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		for _, h := range handlers {
			h.RegisterRoutes(r)
		}
	})

	return r
}

func healthHandler(deps HealthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := http.StatusOK
		checks := map[string]string{}

		if err := database.HealthCheck(ctx, deps.Pool); err != nil {
			checks["postgres"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["postgres"] = "up"
		}

		if deps.Redis != nil {
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				checks["redis"] = "down"
				status = http.StatusServiceUnavailable
			} else {
				checks["redis"] = "up"
			}
		}

		if deps.NATS != nil {
			if deps.NATS.Healthy() {
				checks["nats"] = "up"
			} else {
				// Events are best-effort; a NATS outage degrades, not fails.
				checks["nats"] = "down"
			}
		}

		JSON(w, status, checks)
	}
}
