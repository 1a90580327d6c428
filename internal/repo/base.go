package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashcorp/wishlist-backend/internal/storefront"
)

// Base is embedded by the storefront-scoped repositories. It resolves the
// prefixed table for a storefront and rebinds to a transaction handle.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Table starts a query on the storefront's copy of the base table.
func (b Base) Table(ctx context.Context, sf storefront.Storefront, base string) *gorm.DB {
	return b.DB(ctx).Table(sf.Table(base))
}

// Bind returns a Base using tx; a nil tx keeps the current connection.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}
