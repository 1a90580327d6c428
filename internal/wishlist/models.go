package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ashcorp/wishlist-backend/pkg/types"
)

// Wishlist is the owner profile; its id is the Shopify customer id.
type Wishlist struct {
	ID        string    `gorm:"column:id;primaryKey"`
	FirstName string    `gorm:"column:first_name"`
	LastName  string    `gorm:"column:last_name"`
	Image     *string   `gorm:"column:image"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

type Collection struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	WishlistID  string     `gorm:"column:wishlist_id" json:"wishlist_id"`
	Title       string     `gorm:"column:title" json:"title"`
	Description string     `gorm:"column:description" json:"description"`
	ShareID     *string    `gorm:"column:share_id" json:"share_id"`
	Public      bool       `gorm:"column:public" json:"public"`
	ExpiryDate  *time.Time `gorm:"column:expiry_date" json:"expiry_date"`
	NoOfViews   int        `gorm:"column:no_of_views" json:"no_of_views"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// Available reports whether the collection may be served through its share link.
func (c Collection) Available(now time.Time) bool {
	if !c.Public {
		return false
	}
	return c.ExpiryDate == nil || !c.ExpiryDate.Before(now)
}

type Product struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CollectionID  uuid.UUID           `gorm:"column:collectionitem_id;type:uuid" json:"collectionitem_id"`
	ProductID     types.ShopifyID     `gorm:"column:product_id" json:"product_id"`
	ProductHandle string              `gorm:"column:product_handle" json:"product_handle"`
	Title         string              `gorm:"column:title" json:"title"`
	Description   string              `gorm:"column:description" json:"description"`
	Price         decimal.NullDecimal `gorm:"column:price" json:"price"`
	ImageURL      string              `gorm:"column:image_url" json:"image_url"`
	Gifted        int                 `gorm:"column:gifted" json:"gifted"`
	Carted        int                 `gorm:"column:carted" json:"carted"`
	Quantity      int                 `gorm:"column:quantity" json:"quantity"`
	VariantID     types.ShopifyID     `gorm:"column:variant_id" json:"variant_id"`
	CreatedAt     time.Time           `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at" json:"updated_at"`
}

type DeliveryAddress struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CollectionID uuid.UUID `gorm:"column:collectionitem_id;type:uuid" json:"collectionitem_id"`
	Apartment    string    `gorm:"column:apartment" json:"apartment"`
	Country      string    `gorm:"column:country" json:"country"`
	Postcode     string    `gorm:"column:postcode" json:"postcode"`
	City         string    `gorm:"column:city" json:"city"`
	State        string    `gorm:"column:state" json:"state"`
	Address      string    `gorm:"column:address" json:"address"`
	Phone        string    `gorm:"column:phone" json:"phone"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}
