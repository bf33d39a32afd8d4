package router

import (
	"net/http"
	"slices"
	"strings"

	"github.com/shandysiswandi/shopauth/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in app.maintenance.endpoints,
// or for every route except /health while app.maintenance.enabled is true.
// Both keys are read per request so a config reload takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg != nil && underMaintenance(cfg, matchedRoutePath(r)) {
				w.Header().Set("Retry-After", "60")
				writeJSON(w, errorResponse{Message: "Service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func underMaintenance(cfg config.Config, route string) bool {
	if cfg.GetBool("app.maintenance.enabled") && route != "/health" {
		return true
	}
	return slices.ContainsFunc(cfg.GetArray("app.maintenance.endpoints"), func(e string) bool {
		return strings.TrimSpace(e) == route
	})
}
