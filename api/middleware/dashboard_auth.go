package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ashcorp/wishlist-backend/api/responses"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
	pkgauth "github.com/ashcorp/wishlist-backend/pkg/auth"
	"github.com/ashcorp/wishlist-backend/pkg/config"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
)

// DashboardCookie carries the dashboard token for browser sessions.
const DashboardCookie = "wl_dashboard"

type dashboardClaimsKey struct{}

// DashboardAuth requires a dashboard token when a signing secret is
// configured; otherwise the dashboard stays open.
func DashboardAuth(cfg config.DashboardConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.AuthEnabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := dashboardToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseDashboardToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			sf := storefront.FromContext(r.Context())
			if !claims.Allows(sf.String()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token does not grant this storefront"))
				return
			}

			ctx := context.WithValue(r.Context(), dashboardClaimsKey{}, claims)
			if logg != nil {
				ctx = logg.WithField(ctx, "operator", claims.Subject)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DashboardClaimsFromContext returns the verified claims, if any.
func DashboardClaimsFromContext(ctx context.Context) *pkgauth.DashboardClaims {
	if ctx == nil {
		return nil
	}
	claims, _ := ctx.Value(dashboardClaimsKey{}).(*pkgauth.DashboardClaims)
	return claims
}

func dashboardToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	if raw != "" {
		return raw
	}
	if cookie, err := r.Cookie(DashboardCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
