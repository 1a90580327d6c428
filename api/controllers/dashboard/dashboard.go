package dashboard

import (
	"bytes"
	"net/http"

	"github.com/ashcorp/wishlist-backend/api/responses"
	"github.com/ashcorp/wishlist-backend/api/validators"
	"github.com/ashcorp/wishlist-backend/internal/dashboard"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
)

const maxFilterLength = 128

type ordersResponse struct {
	Orders []dashboard.OrderRow `json:"orders"`
}

// Page renders the HTML dashboard for the request storefront.
func Page(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		page, err := svc.Page(ctx, storefront.FromContext(ctx), filtersFromRequest(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var buf bytes.Buffer
		if err := dashboard.Render(&buf, page); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render dashboard"))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

// ShopifyOrders returns the formatted wishlist orders as JSON.
func ShopifyOrders(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		rows, err := svc.Orders(ctx, storefront.FromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, ordersResponse{Orders: filtersFromRequest(r).Apply(rows)})
	}
}

func Stats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		stats, err := svc.Stats(ctx, storefront.FromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func filtersFromRequest(r *http.Request) dashboard.Filters {
	return dashboard.Filters{
		Search:            validators.QueryString(r, "search", maxFilterLength),
		PaymentStatus:     validators.QueryString(r, "paymentStatus", maxFilterLength),
		FulfillmentStatus: validators.QueryString(r, "fulfillmentStatus", maxFilterLength),
	}
}
