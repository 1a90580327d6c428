package wishlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ashcorp/wishlist-backend/pkg/types"
)

// WishlistDTO is the owner profile with the image key resolved to a URL.
type WishlistDTO struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WishlistWithCollections struct {
	WishlistDTO
	Collections []CollectionSummary `json:"collections"`
}

type CollectionSummary struct {
	Collection
	Products  []Product `json:"products"`
	NoOfItems int       `json:"no_of_items"`
}

type CollectionDetail struct {
	Collection
	DeliveryAddress *DeliveryAddress `json:"delivery_address"`
	Products        []Product        `json:"products"`
}

type WishlistResult struct {
	Wishlist WishlistWithCollections `json:"wishlist"`
}

type AddCollectionResult struct {
	Message    string      `json:"message"`
	Wishlist   WishlistDTO `json:"wishlist"`
	Collection Collection  `json:"collection"`
	Products   []Product   `json:"products"`
}

type CollectionResult struct {
	Message    string           `json:"message,omitempty"`
	Collection CollectionDetail `json:"collection"`
	Wishlist   *WishlistDTO     `json:"wishlist"`
}

type DeleteCollectionResult struct {
	Message    string     `json:"message"`
	Collection Collection `json:"collection"`
}

type ProductResult struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}

// SharedCollection is the public projection served through a share link.
type SharedCollection struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ShareID         *string          `json:"share_id"`
	Public          bool             `json:"public"`
	ExpiryDate      *time.Time       `json:"expiry_date"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeliveryAddress *DeliveryAddress `json:"delivery_address"`
	Products        []SharedProduct  `json:"products"`
}

type SharedProduct struct {
	ID            uuid.UUID           `json:"id"`
	ProductID     types.ShopifyID     `json:"product_id"`
	ProductHandle string              `json:"product_handle"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Price         decimal.NullDecimal `json:"price"`
	ImageURL      string              `json:"image_url"`
	Quantity      int                 `json:"quantity"`
	VariantID     types.ShopifyID     `json:"variant_id"`
}

type SharedWishlist struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Image     *string `json:"image"`
}

type SharedCollectionResult struct {
	Collection SharedCollection `json:"collection"`
	Wishlist   SharedWishlist   `json:"wishlist"`
}

// ProductInput carries the product fields accepted on create.
type ProductInput struct {
	ProductID     types.ShopifyID     `json:"product_id"`
	ProductHandle string              `json:"product_handle"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Price         decimal.NullDecimal `json:"price"`
	ImageURL      string              `json:"image_url"`
	Gifted        int                 `json:"gifted"`
	Quantity      int                 `json:"quantity"`
	VariantID     types.ShopifyID     `json:"variant_id"`
}

type AddCollectionInput struct {
	WishlistID string
	Title      string
	FirstName  string
	LastName   string
	Image      string
	Product    *ProductInput
}

type DeliveryAddressInput struct {
	Apartment string `json:"apartment"`
	Country   string `json:"country"`
	Postcode  string `json:"postcode"`
	City      string `json:"city"`
	State     string `json:"state"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
}

type UpdateCollectionInput struct {
	WishlistID      string
	Title           *string
	Description     *string
	Public          *bool
	ExpiryDate      OptionalTime
	DeliveryAddress *DeliveryAddressInput
}

// OptionalTime distinguishes an absent JSON field from an explicit null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expiry_date must be a string or null")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		o.Value = nil
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			o.Value = &utc
			return nil
		}
	}
	return fmt.Errorf("expiry_date %q is not a valid date", raw)
}
