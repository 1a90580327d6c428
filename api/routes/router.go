package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ashcorp/wishlist-backend/api/controllers"
	dashboardcontrollers "github.com/ashcorp/wishlist-backend/api/controllers/dashboard"
	webhookcontrollers "github.com/ashcorp/wishlist-backend/api/controllers/webhooks"
	"github.com/ashcorp/wishlist-backend/api/middleware"
	"github.com/ashcorp/wishlist-backend/internal/dashboard"
	"github.com/ashcorp/wishlist-backend/internal/media"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/internal/webhooks"
	"github.com/ashcorp/wishlist-backend/internal/wishlist"
	"github.com/ashcorp/wishlist-backend/pkg/config"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
	"github.com/ashcorp/wishlist-backend/pkg/metrics"
)

// Dependencies are the services and clients the HTTP surface is built from.
type Dependencies struct {
	Wishlist  wishlist.Service
	Media     media.Service
	Webhooks  webhooks.Service
	Dashboard dashboard.Service

	Credentials  *storefront.CredentialResolver
	WebhookGuard *webhooks.IdempotencyGuard

	// Readiness checks keyed by name, e.g. "db", "redis", "s3".
	Pingers map[string]controllers.Pinger

	Gatherer       prometheus.Gatherer
	HTTPMetrics    *metrics.HTTPMetrics
	WebhookMetrics *metrics.WebhookMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Pingers, logg))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	webhookDeps := webhookcontrollers.Deps{
		Service: deps.Webhooks,
		Metrics: deps.WebhookMetrics,
		Logger:  logg,
	}
	if deps.Credentials != nil {
		webhookDeps.Credentials = deps.Credentials
	}
	if deps.WebhookGuard != nil {
		webhookDeps.Guard = deps.WebhookGuard
	}

	dashboardAuth := middleware.DashboardAuth(cfg.Dashboard, logg)

	for _, sf := range storefront.All() {
		pin := middleware.Storefront(sf, logg)

		r.Route(apiPrefix(sf), func(r chi.Router) {
			r.Use(pin)
			mountWishlistRoutes(r, cfg, logg, deps)
		})

		r.With(pin).Post("/shopify_order_create"+webhookSuffix(sf), webhookcontrollers.ShopifyOrderCreate(webhookDeps))
		r.With(pin).Post("/shopify_cart_update"+webhookSuffix(sf), webhookcontrollers.ShopifyCartUpdate(webhookDeps))

		r.With(pin, dashboardAuth).Get(dashboard.PagePath(sf), dashboardcontrollers.Page(deps.Dashboard, logg))
	}

	byQuery := middleware.StorefrontFrom(func(r *http.Request) string {
		return r.URL.Query().Get("storefront")
	}, logg)
	r.With(byQuery, dashboardAuth).Get("/shopify_orders", dashboardcontrollers.ShopifyOrders(deps.Dashboard, logg))

	byParam := middleware.StorefrontFrom(func(r *http.Request) string {
		return chi.URLParam(r, "storefront")
	}, logg)
	r.With(byParam, dashboardAuth).Get("/api/dashboard/{storefront}/stats", dashboardcontrollers.Stats(deps.Dashboard, logg))

	return r
}

func mountWishlistRoutes(r chi.Router, cfg *config.Config, logg *logger.Logger, deps Dependencies) {
	r.Route("/wishlist/{wishlistId}", func(r chi.Router) {
		r.Get("/", controllers.GetWishlist(deps.Wishlist, logg))
		r.Post("/collection", controllers.AddCollection(deps.Wishlist, logg))
		r.Post("/upload", controllers.UploadProfileImage(deps.Media, cfg.Media.MaxUploadBytes(), logg))
	})

	r.Route("/collection/{collectionId}", func(r chi.Router) {
		r.Get("/", controllers.GetCollection(deps.Wishlist, logg))
		r.Put("/", controllers.UpdateCollection(deps.Wishlist, logg))
		r.Delete("/", controllers.DeleteCollection(deps.Wishlist, logg))
		r.Post("/product", controllers.AddProduct(deps.Wishlist, logg))
		r.Put("/product/{productId}/variant", controllers.UpdateProductVariant(deps.Wishlist, logg))
		r.Delete("/product/{productId}", controllers.RemoveProduct(deps.Wishlist, logg))
	})

	r.Get("/share/{shareId}", controllers.GetSharedCollection(deps.Wishlist, logg))
}

func apiPrefix(sf storefront.Storefront) string {
	if sf.Key == storefront.Default().Key {
		return "/api"
	}
	return "/api/" + sf.String()
}

func webhookSuffix(sf storefront.Storefront) string {
	if sf.Key == storefront.Default().Key {
		return ""
	}
	return "_" + sf.String()
}
