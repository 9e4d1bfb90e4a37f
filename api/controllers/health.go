package controllers

import (
	"context"
	"net/http"

	"github.com/otka-dev/otka-backend/api/responses"
	"github.com/otka-dev/otka-backend/pkg/config"
	pkgerrors "github.com/otka-dev/otka-backend/pkg/errors"
	"github.com/otka-dev/otka-backend/pkg/logger"
)

// Pinger is any dependency that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OTKA-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness along with per-dependency status. Nil
// dependencies are skipped so the same handler serves every binary.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OTKA-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				checks[name] = err.Error()
				healthy = false
				continue
			}
			checks[name] = "ok"
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}
