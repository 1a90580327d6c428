// Package testdb opens in-memory sqlite databases carrying the wishlist
// schema for every storefront.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ashcorp/wishlist-backend/internal/storefront"
)

const schema = `
CREATE TABLE IF NOT EXISTS {p}wishlist (
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  image TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS {p}collectionitem (
  id TEXT PRIMARY KEY,
  wishlist_id TEXT NOT NULL REFERENCES {p}wishlist(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  share_id TEXT UNIQUE,
  public BOOLEAN NOT NULL DEFAULT 1,
  expiry_date DATETIME,
  no_of_views INTEGER NOT NULL DEFAULT 0 CHECK (no_of_views >= 0),
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS {p}collectionitem_product (
  id TEXT PRIMARY KEY,
  collectionitem_id TEXT NOT NULL REFERENCES {p}collectionitem(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  product_handle TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC,
  image_url TEXT NOT NULL DEFAULT '',
  gifted INTEGER NOT NULL DEFAULT 0 CHECK (gifted >= 0),
  carted INTEGER NOT NULL DEFAULT 0 CHECK (carted >= 0),
  quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
  variant_id TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (collectionitem_id, product_id)
);
CREATE TABLE IF NOT EXISTS {p}collectionitem_deliveryaddress (
  id TEXT PRIMARY KEY,
  collectionitem_id TEXT NOT NULL UNIQUE REFERENCES {p}collectionitem(id) ON DELETE CASCADE,
  apartment TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  postcode TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS {p}wishlist_orders (
  order_id TEXT PRIMARY KEY,
  wishlist_share_id TEXT NOT NULL,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS {p}processed_webhooks (
  order_id TEXT PRIMARY KEY,
  webhook_id TEXT NOT NULL,
  line_items TEXT NOT NULL DEFAULT '[]',
  created_at DATETIME,
  updated_at DATETIME
);`

// Open returns a fresh database private to t. The pool is pinned to one
// connection so the in-memory database lives as long as the test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, sf := range storefront.All() {
		ddl := strings.ReplaceAll(schema, "{p}", sf.TablePrefix)
		for _, stmt := range strings.Split(ddl, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			require.NoError(t, db.Exec(stmt).Error)
		}
	}
	return db
}
