package storefront

import (
	"context"
	"strings"
)

// Key identifies one of the Shopify shops served by the process.
type Key string

const (
	Ashluxe   Key = "ashluxe"
	Ashluxury Key = "ashluxury"
)

// Base table names; storefronts prefix them.
const (
	TableWishlist          = "wishlist"
	TableCollection        = "collectionitem"
	TableProduct           = "collectionitem_product"
	TableDeliveryAddress   = "collectionitem_deliveryaddress"
	TableOrders            = "wishlist_orders"
	TableProcessedWebhooks = "processed_webhooks"
)

// Storefront carries the naming rules for one shop.
type Storefront struct {
	Key          Key
	TablePrefix  string
	ImagePrefix  string
	SecretSuffix string
}

var (
	ashluxe = Storefront{Key: Ashluxe}

	ashluxury = Storefront{
		Key:          Ashluxury,
		TablePrefix:  "ashluxury_",
		ImagePrefix:  "ashluxury_",
		SecretSuffix: "_ASHLUXURY",
	}
)

// Default returns the primary storefront.
func Default() Storefront {
	return ashluxe
}

// All lists every storefront, primary first.
func All() []Storefront {
	return []Storefront{ashluxe, ashluxury}
}

// Lookup resolves a storefront by key; the empty key maps to the default.
func Lookup(key string) (Storefront, bool) {
	switch Key(strings.ToLower(strings.TrimSpace(key))) {
	case "", Ashluxe:
		return ashluxe, true
	case Ashluxury:
		return ashluxury, true
	}
	return Storefront{}, false
}

// Table returns the storefront-specific table name.
func (s Storefront) Table(base string) string {
	return s.TablePrefix + base
}

// SecretKey returns the secret name for this storefront, e.g. SHOPIFY_STORE_URL_ASHLUXURY.
func (s Storefront) SecretKey(base string) string {
	return base + s.SecretSuffix
}

func (s Storefront) String() string {
	return string(s.Key)
}

type ctxKey struct{}

// WithContext stores the storefront resolved for the current request.
func WithContext(ctx context.Context, sf Storefront) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, sf)
}

// FromContext returns the request storefront, or the default when none was set.
func FromContext(ctx context.Context) Storefront {
	if ctx == nil {
		return ashluxe
	}
	if sf, ok := ctx.Value(ctxKey{}).(Storefront); ok {
		return sf
	}
	return ashluxe
}
