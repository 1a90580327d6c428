package dashboard

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashcorp/wishlist-backend/internal/repo"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
)

// Counts are the raw aggregates behind the dashboard stats.
type Counts struct {
	Users    int64
	Profiles int64
	Adds     int64
	Gifted   int64
	Carted   int64
}

type Repository interface {
	Counts(ctx context.Context, sf storefront.Storefront) (Counts, error)
	ListOrderIDs(ctx context.Context, sf storefront.Storefront) ([]string, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Counts(ctx context.Context, sf storefront.Storefront) (Counts, error) {
	var out Counts
	if err := r.Table(ctx, sf, storefront.TableWishlist).Count(&out.Users).Error; err != nil {
		return Counts{}, err
	}
	if err := r.Table(ctx, sf, storefront.TableCollection).Count(&out.Profiles).Error; err != nil {
		return Counts{}, err
	}

	var products struct {
		Adds   int64 `gorm:"column:adds"`
		Gifted int64 `gorm:"column:gifted"`
		Carted int64 `gorm:"column:carted"`
	}
	err := r.Table(ctx, sf, storefront.TableProduct).
		Select(`COUNT(*) AS adds,
			COALESCE(SUM(CASE WHEN gifted >= 1 THEN 1 ELSE 0 END), 0) AS gifted,
			COALESCE(SUM(CASE WHEN carted >= 1 THEN 1 ELSE 0 END), 0) AS carted`).
		Scan(&products).Error
	if err != nil {
		return Counts{}, err
	}
	out.Adds = products.Adds
	out.Gifted = products.Gifted
	out.Carted = products.Carted
	return out, nil
}

// ListOrderIDs returns recorded wishlist order ids, newest first.
func (r *repository) ListOrderIDs(ctx context.Context, sf storefront.Storefront) ([]string, error) {
	var ids []string
	err := r.Table(ctx, sf, storefront.TableOrders).
		Order("created_at DESC").
		Pluck("order_id", &ids).Error
	return ids, err
}
