package controllers

import (
	"net/http"

	"github.com/DJCodeOne/freshwax-sub005/api/responses"
	"github.com/DJCodeOne/freshwax-sub005/pkg/config"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db"
	pkgerrors "github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Freshwax-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Freshwax-Env", cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
