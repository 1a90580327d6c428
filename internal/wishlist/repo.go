package wishlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashcorp/wishlist-backend/internal/repo"
	"github.com/ashcorp/wishlist-backend/internal/storefront"
)

// Repository defines persistence for wishlists, collections, products and
// delivery addresses. Every call is scoped to one storefront's table set.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindWishlist(ctx context.Context, sf storefront.Storefront, id string) (*Wishlist, error)
	CreateWishlist(ctx context.Context, sf storefront.Storefront, w *Wishlist) error
	UpdateWishlistImage(ctx context.Context, sf storefront.Storefront, id, key string, now time.Time) error

	FindCollection(ctx context.Context, sf storefront.Storefront, id uuid.UUID) (*Collection, error)
	FindOwnedCollection(ctx context.Context, sf storefront.Storefront, id uuid.UUID, wishlistID string) (*Collection, error)
	FindCollectionByShareID(ctx context.Context, sf storefront.Storefront, shareID string) (*Collection, error)
	ListCollections(ctx context.Context, sf storefront.Storefront, wishlistID string) ([]Collection, error)
	CreateCollection(ctx context.Context, sf storefront.Storefront, c *Collection) error
	UpdateCollection(ctx context.Context, sf storefront.Storefront, id uuid.UUID, updates map[string]any) error
	DeleteCollection(ctx context.Context, sf storefront.Storefront, id uuid.UUID) error
	IncrementViews(ctx context.Context, sf storefront.Storefront, id uuid.UUID) error

	FindDeliveryAddress(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID) (*DeliveryAddress, error)
	UpsertDeliveryAddress(ctx context.Context, sf storefront.Storefront, addr *DeliveryAddress) error

	ListProducts(ctx context.Context, sf storefront.Storefront, collectionIDs ...uuid.UUID) ([]Product, error)
	FindProduct(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID, productID string) (*Product, error)
	CreateProduct(ctx context.Context, sf storefront.Storefront, p *Product) error
	UpdateProductVariant(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID, productID, variantID string, now time.Time) error
	DeleteProduct(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID, productID string) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) FindWishlist(ctx context.Context, sf storefront.Storefront, id string) (*Wishlist, error) {
	var w Wishlist
	if err := r.Table(ctx, sf, storefront.TableWishlist).Where("id = ?", id).Take(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) CreateWishlist(ctx context.Context, sf storefront.Storefront, w *Wishlist) error {
	return r.Table(ctx, sf, storefront.TableWishlist).Create(w).Error
}

func (r *repository) UpdateWishlistImage(ctx context.Context, sf storefront.Storefront, id, key string, now time.Time) error {
	res := r.Table(ctx, sf, storefront.TableWishlist).
		Where("id = ?", id).
		Updates(map[string]any{"image": key, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindCollection(ctx context.Context, sf storefront.Storefront, id uuid.UUID) (*Collection, error) {
	var c Collection
	if err := r.Table(ctx, sf, storefront.TableCollection).Where("id = ?", id).Take(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) FindOwnedCollection(ctx context.Context, sf storefront.Storefront, id uuid.UUID, wishlistID string) (*Collection, error) {
	var c Collection
	err := r.Table(ctx, sf, storefront.TableCollection).
		Where("id = ? AND wishlist_id = ?", id, wishlistID).
		Take(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) FindCollectionByShareID(ctx context.Context, sf storefront.Storefront, shareID string) (*Collection, error) {
	var c Collection
	if err := r.Table(ctx, sf, storefront.TableCollection).Where("share_id = ?", shareID).Take(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListCollections(ctx context.Context, sf storefront.Storefront, wishlistID string) ([]Collection, error) {
	var rows []Collection
	err := r.Table(ctx, sf, storefront.TableCollection).
		Where("wishlist_id = ?", wishlistID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateCollection(ctx context.Context, sf storefront.Storefront, c *Collection) error {
	return r.Table(ctx, sf, storefront.TableCollection).Create(c).Error
}

func (r *repository) UpdateCollection(ctx context.Context, sf storefront.Storefront, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.Table(ctx, sf, storefront.TableCollection).Where("id = ?", id).Updates(updates).Error
}

// DeleteCollection removes the collection and its children explicitly so the
// result does not depend on foreign-key enforcement.
func (r *repository) DeleteCollection(ctx context.Context, sf storefront.Storefront, id uuid.UUID) error {
	if err := r.Table(ctx, sf, storefront.TableProduct).Where("collectionitem_id = ?", id).Delete(&Product{}).Error; err != nil {
		return err
	}
	if err := r.Table(ctx, sf, storefront.TableDeliveryAddress).Where("collectionitem_id = ?", id).Delete(&DeliveryAddress{}).Error; err != nil {
		return err
	}
	res := r.Table(ctx, sf, storefront.TableCollection).Where("id = ?", id).Delete(&Collection{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) IncrementViews(ctx context.Context, sf storefront.Storefront, id uuid.UUID) error {
	return r.Table(ctx, sf, storefront.TableCollection).
		Where("id = ?", id).
		UpdateColumn("no_of_views", gorm.Expr("no_of_views + 1")).Error
}

func (r *repository) FindDeliveryAddress(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID) (*DeliveryAddress, error) {
	var addr DeliveryAddress
	if err := r.Table(ctx, sf, storefront.TableDeliveryAddress).Where("collectionitem_id = ?", collectionID).Take(&addr).Error; err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *repository) UpsertDeliveryAddress(ctx context.Context, sf storefront.Storefront, addr *DeliveryAddress) error {
	return r.Table(ctx, sf, storefront.TableDeliveryAddress).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "collectionitem_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"apartment", "country", "postcode", "city", "state", "address", "phone", "updated_at",
			}),
		}).
		Create(addr).Error
}

func (r *repository) ListProducts(ctx context.Context, sf storefront.Storefront, collectionIDs ...uuid.UUID) ([]Product, error) {
	if len(collectionIDs) == 0 {
		return []Product{}, nil
	}
	var rows []Product
	err := r.Table(ctx, sf, storefront.TableProduct).
		Where("collectionitem_id IN ?", collectionIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindProduct(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID, productID string) (*Product, error) {
	var p Product
	err := r.Table(ctx, sf, storefront.TableProduct).
		Where("collectionitem_id = ? AND product_id = ?", collectionID, productID).
		Take(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreateProduct(ctx context.Context, sf storefront.Storefront, p *Product) error {
	return r.Table(ctx, sf, storefront.TableProduct).Create(p).Error
}

func (r *repository) UpdateProductVariant(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID, productID, variantID string, now time.Time) error {
	var variant any
	if variantID != "" {
		variant = variantID
	}
	res := r.Table(ctx, sf, storefront.TableProduct).
		Where("collectionitem_id = ? AND product_id = ?", collectionID, productID).
		Updates(map[string]any{"variant_id": variant, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteProduct(ctx context.Context, sf storefront.Storefront, collectionID uuid.UUID, productID string) (int64, error) {
	res := r.Table(ctx, sf, storefront.TableProduct).
		Where("collectionitem_id = ? AND product_id = ?", collectionID, productID).
		Delete(&Product{})
	return res.RowsAffected, res.Error
}
