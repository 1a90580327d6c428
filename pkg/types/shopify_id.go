package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ShopifyID is a Shopify resource id. Storefront scripts send product and
// variant ids both as JSON numbers and as strings, and some send the GraphQL
// gid form; all of them normalize to the numeric string.
type ShopifyID string

const gidPrefix = "gid://shopify/"

// ParseShopifyID normalizes raw input, stripping any gid://shopify/<Type>/ prefix.
func ParseShopifyID(raw string) ShopifyID {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, gidPrefix) {
		if idx := strings.LastIndex(s, "/"); idx >= 0 {
			s = s[idx+1:]
		}
	}
	return ShopifyID(s)
}

func (id ShopifyID) String() string {
	return string(id)
}

func (id ShopifyID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

func (id *ShopifyID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ParseShopifyID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("shopify id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("shopify id must be an integer, got %s", n.String())
	}
	*id = ShopifyID(n.String())
	return nil
}

func (id ShopifyID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id *ShopifyID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = ""
	case string:
		*id = ShopifyID(v)
	case []byte:
		*id = ShopifyID(string(v))
	case int64:
		*id = ShopifyID(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("ShopifyID: unsupported Scan type %T", src)
	}
	return nil
}

func (id ShopifyID) Value() (driver.Value, error) {
	if id == "" {
		return nil, nil
	}
	return string(id), nil
}
