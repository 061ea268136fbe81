package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/karystudio/podpool/internal/core/port"
	"go.uber.org/zap"
)

// HealthCheck probes a backing dependency
type HealthCheck func(ctx context.Context) error

// NewRouter assembles the HTTP surface. The pool-manager routes sit behind
// session auth; health does not.
func NewRouter(handler *PoolManagerHandler, sessions port.SessionStore, checks []HealthCheck, log *zap.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(RequestIDMiddleware)

	router.Route("/pool-manager", func(r chi.Router) {
		r.Use(AuthMiddleware(sessions, log))
		r.Post("/claim-pod/{workspaceId}", handler.ClaimPod)
		r.Post("/drop-pod/{workspaceId}", handler.DropPod)
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.Warn("Health check failed", zap.Error(err))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return router
}
