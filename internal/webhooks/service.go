package webhooks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/internal/wishlist"
	"github.com/ashcorp/wishlist-backend/pkg/db"
	dbtypes "github.com/ashcorp/wishlist-backend/pkg/db/types"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
	"github.com/ashcorp/wishlist-backend/pkg/metrics"
	"github.com/ashcorp/wishlist-backend/pkg/shopify"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusIgnored Status = "ignored"
)

const (
	counterGifted = "gifted"
	counterCarted = "carted"
)

// Result is returned to Shopify in the response body.
type Result struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func ignored(reason string) *Result {
	return &Result{Status: StatusIgnored, Reason: reason}
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service reconciles Shopify order events into product counters.
type Service interface {
	HandleOrderCreate(ctx context.Context, sf storefront.Storefront, webhookID string, order shopify.OrderWebhook) (*Result, error)
	HandleCartUpdate(ctx context.Context, sf storefront.Storefront, webhookID string, order shopify.OrderWebhook) (*Result, error)
}

type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Metrics *metrics.WebhookMetrics
	Logger  *logger.Logger
	Clock   func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.WebhookMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("webhook repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     clock,
	}, nil
}

// HandleOrderCreate bumps gifted for every ordered product of the shared
// collection named in the order's note attributes.
func (s *service) HandleOrderCreate(ctx context.Context, sf storefront.Storefront, webhookID string, order shopify.OrderWebhook) (*Result, error) {
	orderID := order.ID.String()
	if orderID == "" {
		return ignored("missing order id"), nil
	}
	shareID := order.ShareIDFromAttributes()
	if shareID == "" {
		return ignored("order has no wishlist share id"), nil
	}

	result := &Result{Status: StatusOK}
	increments := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		inserted, err := repo.RecordOrder(ctx, sf, orderID, shareID, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record wishlist order")
		}
		if !inserted {
			result = ignored("order already recorded")
			return nil
		}

		collectionID, err := s.collectionID(ctx, repo, sf, shareID)
		if err != nil {
			return err
		}
		if collectionID == uuid.Nil {
			result = ignored("collection not found")
			return nil
		}

		for _, item := range order.LineItems {
			productID := item.ProductID.String()
			if productID == "" {
				continue
			}
			quantity := item.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			n, err := repo.IncrementGifted(ctx, sf, collectionID, productID, quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment gifted")
			}
			if n > 0 {
				increments++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddIncrements(sf.String(), counterGifted, increments)
	s.log(ctx, sf, "webhooks.order_create", map[string]any{
		"order_id":    orderID,
		"webhook_id":  webhookID,
		"share_id":    shareID,
		"status":      string(result.Status),
		"reason":      result.Reason,
		"incremented": increments,
	})
	return result, nil
}

// HandleCartUpdate bumps carted once per product id an order has not
// reported before. Seen ids live in processed_webhooks.
func (s *service) HandleCartUpdate(ctx context.Context, sf storefront.Storefront, webhookID string, order shopify.OrderWebhook) (*Result, error) {
	orderID := order.ID.String()
	shareID := order.ShareIDFromNote()
	productIDs := order.ProductIDs()
	switch {
	case orderID == "":
		return ignored("missing order id"), nil
	case webhookID == "":
		return ignored("missing webhook id"), nil
	case shareID == "":
		return ignored("note has no wishlist share id"), nil
	case len(productIDs) == 0:
		return ignored("no product ids"), nil
	}

	result := &Result{Status: StatusOK}
	increments := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindProcessed(ctx, sf, orderID)
		if err != nil && !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load processed webhook")
		}
		var seen dbtypes.StringList
		if existing != nil {
			seen = existing.LineItems
		}

		fresh := make([]string, 0, len(productIDs))
		for _, id := range productIDs {
			if !seen.Contains(id) {
				fresh = append(fresh, id)
			}
		}
		if len(fresh) == 0 {
			result = ignored("no new products")
			return nil
		}

		collectionID, err := s.collectionID(ctx, repo, sf, shareID)
		if err != nil {
			return err
		}
		if collectionID == uuid.Nil {
			result = ignored("collection not found")
			return nil
		}

		for _, id := range fresh {
			n, err := repo.IncrementCarted(ctx, sf, collectionID, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment carted")
			}
			if n > 0 {
				increments++
			}
		}

		now := s.now()
		if existing == nil {
			row := &ProcessedWebhook{
				OrderID:   orderID,
				WebhookID: webhookID,
				LineItems: dbtypes.StringList(fresh),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.CreateProcessed(ctx, sf, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert processed webhook")
			}
			return nil
		}
		merged := append(append(dbtypes.StringList{}, seen...), fresh...)
		if err := repo.UpdateProcessed(ctx, sf, orderID, webhookID, merged, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update processed webhook")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddIncrements(sf.String(), counterCarted, increments)
	s.log(ctx, sf, "webhooks.cart_update", map[string]any{
		"order_id":    orderID,
		"webhook_id":  webhookID,
		"share_id":    shareID,
		"status":      string(result.Status),
		"reason":      result.Reason,
		"incremented": increments,
	})
	return result, nil
}

// collectionID resolves the share id, returning uuid.Nil when no collection
// carries it.
func (s *service) collectionID(ctx context.Context, repo Repository, sf storefront.Storefront, shareID string) (uuid.UUID, error) {
	id, err := repo.FindCollectionIDByShareID(ctx, sf, wishlist.NormalizeShareID(shareID))
	if err != nil {
		if db.IsNotFound(err) {
			return uuid.Nil, nil
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve shared collection")
	}
	return id, nil
}

func (s *service) log(ctx context.Context, sf storefront.Storefront, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithStorefront(ctx, sf.String())
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}
