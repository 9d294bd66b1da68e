package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/koocao/reduzed-backend/api/responses"
	"github.com/koocao/reduzed-backend/pkg/config"
	"github.com/koocao/reduzed-backend/pkg/logger"
)

const readinessTimeout = 5 * time.Second

// Pinger is satisfied by the infrastructure clients the API depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Reduzed-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each named dependency and reports per-check status.
// Any failing check flips the response to 503.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Reduzed-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		ready := true
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Ping(ctx); err != nil {
				ready = false
				status[name] = "unavailable"
				if logg != nil {
					logg.Error(logg.WithField(ctx, "check", name), "health.ready.check_failed", err)
				}
				continue
			}
			status[name] = "ok"
		}

		if !ready {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "checks": status})
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": status})
	}
}
