package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashcorp/wishlist-backend/api/responses"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/internal/wishlist"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
)

// GetSharedCollection serves the public view of a shared collection.
func GetSharedCollection(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		resp, err := svc.GetSharedCollection(ctx, storefront.FromContext(ctx), chi.URLParam(r, "shareId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
