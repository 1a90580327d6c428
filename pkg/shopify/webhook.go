package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/ashcorp/wishlist-backend/pkg/types"
)

const (
	HeaderHmac      = "X-Shopify-Hmac-Sha256"
	HeaderWebhookID = "X-Shopify-Webhook-Id"
	HeaderTopic     = "X-Shopify-Topic"
	HeaderShop      = "X-Shopify-Shop-Domain"

	// ShareIDAttribute is the cart attribute the storefront theme writes.
	ShareIDAttribute = "wishlistShareId"
)

var noteShareIDPattern = regexp.MustCompile(ShareIDAttribute + `=([^\s]+)`)

// OrderWebhook is the orders/create and orders/updated payload subset.
type OrderWebhook struct {
	ID             types.ShopifyID   `json:"id"`
	Name           string            `json:"name"`
	Note           string            `json:"note"`
	NoteAttributes []NoteAttribute   `json:"note_attributes"`
	LineItems      []WebhookLineItem `json:"line_items"`
}

type NoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type WebhookLineItem struct {
	ID        types.ShopifyID `json:"id"`
	ProductID types.ShopifyID `json:"product_id"`
	VariantID types.ShopifyID `json:"variant_id"`
	Quantity  int             `json:"quantity"`
}

// ShareIDFromAttributes returns the wishlist share id from note attributes.
func (o OrderWebhook) ShareIDFromAttributes() string {
	for _, attr := range o.NoteAttributes {
		if attr.Name == ShareIDAttribute {
			return strings.TrimSpace(attr.Value)
		}
	}
	return ""
}

// ShareIDFromNote extracts "wishlistShareId=<token>" from the free-text note.
func (o OrderWebhook) ShareIDFromNote() string {
	return ShareIDFromNote(o.Note)
}

func ShareIDFromNote(note string) string {
	match := noteShareIDPattern.FindStringSubmatch(note)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// ProductIDs lists line item product ids in order, skipping empty ids and
// duplicates.
func (o OrderWebhook) ProductIDs() []string {
	seen := make(map[string]struct{}, len(o.LineItems))
	ids := make([]string, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		id := item.ProductID.String()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// VerifyHMAC checks the base64 HMAC-SHA256 signature Shopify sends with
// every webhook against the raw request body.
func VerifyHMAC(body []byte, signature, secret string) bool {
	signature = strings.TrimSpace(signature)
	if signature == "" || secret == "" {
		return false
	}
	provided, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}

// SignHMAC returns the signature Shopify would send for body.
func SignHMAC(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
