package controllers

import (
	"context"
	"net/http"

	"github.com/latsops/pos-backend/api/responses"
	"github.com/latsops/pos-backend/pkg/config"
	pkgerrors "github.com/latsops/pos-backend/pkg/errors"
	"github.com/latsops/pos-backend/pkg/logger"
)

const envHeader = "X-LatsPOS-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

type namedPinger struct {
	name   string
	pinger pinger
}

// Dep names a backend dependency for the readiness probe.
func Dep(name string, p pinger) namedPinger {
	return namedPinger{name: name, pinger: p}
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each dependency in order and fails on the first one
// that does not answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...namedPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		for _, dep := range deps {
			if dep.pinger == nil {
				continue
			}
			if err := dep.pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
