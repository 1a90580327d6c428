package webhooks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashcorp/wishlist-backend/internal/repo"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
	dbtypes "github.com/ashcorp/wishlist-backend/pkg/db/types"
)

// Repository persists webhook bookkeeping and the counters it reconciles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	RecordOrder(ctx context.Context, sf storefront.Storefront, orderID, shareID string, now time.Time) (bool, error)
	FindCollectionIDByShareID(ctx context.Context, sf storefront.Storefront, shareID string) (uuid.UUID, error)
	IncrementGifted(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID, productID string, quantity int) (int64, error)
	IncrementCarted(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID, productID string) (int64, error)

	FindProcessed(ctx context.Context, sf storefront.Storefront, orderID string) (*ProcessedWebhook, error)
	CreateProcessed(ctx context.Context, sf storefront.Storefront, row *ProcessedWebhook) error
	UpdateProcessed(ctx context.Context, sf storefront.Storefront, orderID, webhookID string, items dbtypes.StringList, now time.Time) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

// RecordOrder inserts the order row and reports whether it was new.
func (r *repository) RecordOrder(ctx context.Context, sf storefront.Storefront, orderID, shareID string, now time.Time) (bool, error) {
	row := WishlistOrder{OrderID: orderID, WishlistShareID: shareID, CreatedAt: now}
	res := r.Table(ctx, sf, storefront.TableOrders).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindCollectionIDByShareID(ctx context.Context, sf storefront.Storefront, shareID string) (uuid.UUID, error) {
	var row struct {
		ID uuid.UUID `gorm:"column:id"`
	}
	err := r.Table(ctx, sf, storefront.TableCollection).
		Select("id").
		Where("share_id = ?", shareID).
		Take(&row).Error
	if err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

func (r *repository) IncrementGifted(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID, productID string, quantity int) (int64, error) {
	res := r.Table(ctx, sf, storefront.TableProduct).
		Where("collectionitem_id = ? AND product_id = ?", collectionID, productID).
		UpdateColumn("gifted", gorm.Expr("gifted + ?", quantity))
	return res.RowsAffected, res.Error
}

func (r *repository) IncrementCarted(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID, productID string) (int64, error) {
	res := r.Table(ctx, sf, storefront.TableProduct).
		Where("collectionitem_id = ? AND product_id = ?", collectionID, productID).
		UpdateColumn("carted", gorm.Expr("carted + 1"))
	return res.RowsAffected, res.Error
}

func (r *repository) FindProcessed(ctx context.Context, sf storefront.Storefront, orderID string) (*ProcessedWebhook, error) {
	var row ProcessedWebhook
	if err := r.Table(ctx, sf, storefront.TableProcessedWebhooks).Where("order_id = ?", orderID).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreateProcessed(ctx context.Context, sf storefront.Storefront, row *ProcessedWebhook) error {
	return r.Table(ctx, sf, storefront.TableProcessedWebhooks).Create(row).Error
}

func (r *repository) UpdateProcessed(ctx context.Context, sf storefront.Storefront, orderID, webhookID string, items dbtypes.StringList, now time.Time) error {
	return r.Table(ctx, sf, storefront.TableProcessedWebhooks).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"webhook_id": webhookID,
			"line_items": items,
			"updated_at": now,
		}).Error
}
