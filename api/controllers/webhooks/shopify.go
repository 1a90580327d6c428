package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ashcorp/wishlist-backend/api/responses"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/internal/webhooks"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
	"github.com/ashcorp/wishlist-backend/pkg/metrics"
	"github.com/ashcorp/wishlist-backend/pkg/shopify"
)

const (
	TopicOrderCreate = "order_create"
	TopicCartUpdate  = "cart_update"

	maxWebhookBody = 2 << 20
)

type shopifyHandlerFunc func(ctx context.Context, sf storefront.Storefront, webhookID string, order shopify.OrderWebhook) (*webhooks.Result, error)

type webhookGuard interface {
	CheckAndMark(ctx context.Context, webhookID string) (bool, error)
	Delete(ctx context.Context, webhookID string) error
}

type credentialResolver interface {
	Resolve(ctx context.Context, sf storefront.Storefront) storefront.Credentials
}

// Deps groups what every Shopify webhook endpoint needs.
type Deps struct {
	Service     webhooks.Service
	Credentials credentialResolver
	Guard       webhookGuard
	Metrics     *metrics.WebhookMetrics
	Logger      *logger.Logger
}

// ShopifyOrderCreate handles the orders/create webhook.
func ShopifyOrderCreate(deps Deps) http.HandlerFunc {
	var handle shopifyHandlerFunc
	if deps.Service != nil {
		handle = deps.Service.HandleOrderCreate
	}
	return shopifyWebhook(deps, TopicOrderCreate, handle)
}

// ShopifyCartUpdate handles the orders/updated webhook carrying the cart note.
func ShopifyCartUpdate(deps Deps) http.HandlerFunc {
	var handle shopifyHandlerFunc
	if deps.Service != nil {
		handle = deps.Service.HandleCartUpdate
	}
	return shopifyWebhook(deps, TopicCartUpdate, handle)
}

func shopifyWebhook(deps Deps, topic string, handle shopifyHandlerFunc) http.HandlerFunc {
	logg := deps.Logger
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sf := storefront.FromContext(ctx)
		started := time.Now()
		outcome := metrics.OutcomeFailed
		defer func() {
			deps.Metrics.IncOutcome(sf.String(), topic, outcome)
			deps.Metrics.ObserveDuration(sf.String(), topic, time.Since(started))
		}()

		if handle == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{
				"shopify_topic": r.Header.Get(shopify.HeaderTopic),
				"shop_domain":   r.Header.Get(shopify.HeaderShop),
			})
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				outcome = metrics.OutcomeRejected
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeTooLarge, "webhook payload too large").
					WithDetails(map[string]any{"max_bytes": maxWebhookBody}))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}

		if deps.Credentials != nil {
			secret := deps.Credentials.Resolve(ctx, sf).WebhookSecret
			if secret != "" && !shopify.VerifyHMAC(payload, r.Header.Get(shopify.HeaderHmac), secret) {
				outcome = metrics.OutcomeRejected
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
				return
			}
		}

		webhookID := strings.TrimSpace(r.Header.Get(shopify.HeaderWebhookID))
		if logg != nil && webhookID != "" {
			ctx = logg.WithField(ctx, "webhook_id", webhookID)
		}

		if deps.Guard != nil && webhookID != "" {
			seen, err := deps.Guard.CheckAndMark(ctx, webhookID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if seen {
				outcome = metrics.OutcomeDuplicate
				responses.WriteSuccess(w, &webhooks.Result{Status: webhooks.StatusIgnored, Reason: "duplicate delivery"})
				return
			}
		}

		var order shopify.OrderWebhook
		if err := json.Unmarshal(payload, &order); err != nil {
			outcome = metrics.OutcomeRejected
			forget(ctx, deps.Guard, webhookID)
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook payload"))
			return
		}

		result, err := handle(ctx, sf, webhookID, order)
		if err != nil {
			forget(ctx, deps.Guard, webhookID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		outcome = metrics.OutcomeProcessed
		if result != nil && result.Status == webhooks.StatusIgnored {
			outcome = metrics.OutcomeIgnored
		}
		responses.WriteSuccess(w, result)
	}
}

func forget(ctx context.Context, guard webhookGuard, webhookID string) {
	if guard == nil || webhookID == "" {
		return
	}
	_ = guard.Delete(ctx, webhookID)
}
