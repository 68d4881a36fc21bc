package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/hims91/audio-nature-nexus-backend/api/responses"
	"github.com/hims91/audio-nature-nexus-backend/pkg/config"
	pkgerrors "github.com/hims91/audio-nature-nexus-backend/pkg/errors"
	"github.com/hims91/audio-nature-nexus-backend/pkg/logger"
)

const envHeader = "X-ANN-Env"

// Pinger is the health-check surface shared by the backing clients.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing dependency and reports the first
// failure. Nil pingers are skipped so partial deployments stay green.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis, pubsub Pinger) http.HandlerFunc {
	deps := []struct {
		name   string
		pinger Pinger
	}{
		{"database", db},
		{"redis", redis},
		{"pubsub", pubsub},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for _, dep := range deps {
			if dep.pinger == nil {
				continue
			}
			if err := dep.pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.name+" unavailable").
						WithDetails(map[string]any{"dependency": dep.name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
