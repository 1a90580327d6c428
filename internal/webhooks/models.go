package webhooks

import (
	"time"

	dbtypes "github.com/ashcorp/wishlist-backend/pkg/db/types"
)

// WishlistOrder records an order placed against a shared collection.
type WishlistOrder struct {
	OrderID         string    `gorm:"column:order_id;primaryKey"`
	WishlistShareID string    `gorm:"column:wishlist_share_id"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

// ProcessedWebhook tracks which product ids of an order have already been
// counted as carted.
type ProcessedWebhook struct {
	OrderID   string             `gorm:"column:order_id;primaryKey"`
	WebhookID string             `gorm:"column:webhook_id"`
	LineItems dbtypes.StringList `gorm:"column:line_items"`
	CreatedAt time.Time          `gorm:"column:created_at"`
	UpdatedAt time.Time          `gorm:"column:updated_at"`
}
