package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/nanopro-wms/backend/api/responses"
	"github.com/nanopro-wms/backend/pkg/config"
	pkgerrors "github.com/nanopro-wms/backend/pkg/errors"
	"github.com/nanopro-wms/backend/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-NanoPro-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores so load balancers only route to
// instances that can actually serve.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-NanoPro-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true

		checks["database"] = checkPing(ctx, dbP)
		checks["redis"] = checkPing(ctx, redisP)
		for _, status := range checks {
			if status != "ok" {
				ready = false
			}
		}

		if !ready {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependências indisponíveis").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func checkPing(ctx context.Context, p pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}
