package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/ashcorp/wishlist-backend/api/responses"
	"github.com/ashcorp/wishlist-backend/pkg/config"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
	"github.com/ashcorp/wishlist-backend/pkg/types"
)

const readinessTimeout = 3 * time.Second

// Pinger is implemented by every backing service checked for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Wishlist-Env", cfg.App.Env)
		responses.WriteSuccess(w, types.StatusPayload{Status: "live"})
	}
}

// HealthReady pings each dependency and reports 503 naming the ones that failed.
func HealthReady(cfg *config.Config, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Wishlist-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)

		failed := map[string]string{}
		for _, name := range names {
			dep := deps[name]
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, types.StatusPayload{Status: "ready"})
	}
}
