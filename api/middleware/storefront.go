package middleware

import (
	"net/http"

	"github.com/ashcorp/wishlist-backend/api/responses"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
)

// Storefront pins the request to one shop's table set. Routes are mounted
// once per storefront with the matching middleware.
func Storefront(sf storefront.Storefront, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := storefront.WithContext(r.Context(), sf)
			if logg != nil {
				ctx = logg.WithStorefront(ctx, sf.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StorefrontFrom resolves the storefront from the request, e.g. a query or
// URL parameter, and rejects unknown keys with 404.
func StorefrontFrom(key func(*http.Request) string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sf, ok := storefront.Lookup(key(r))
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown storefront"))
				return
			}
			ctx := storefront.WithContext(r.Context(), sf)
			if logg != nil {
				ctx = logg.WithStorefront(ctx, sf.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
