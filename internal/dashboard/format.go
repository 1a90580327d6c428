package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/ashcorp/wishlist-backend/pkg/shopify"
)

const channelOnlineStore = "Online store"

// OrderRow is one line of the dashboard orders table.
type OrderRow struct {
	OrderID           string `json:"orderId"`
	WishlistShareID   string `json:"wishlistShareId"`
	DateCreated       string `json:"dateCreated"`
	CustomerName      string `json:"customerName"`
	Channel           string `json:"channel"`
	Amount            string `json:"amount"`
	PaymentStatus     string `json:"paymentStatus"`
	FulfillmentStatus string `json:"fulfillmentStatus"`
	Items             string `json:"items"`
	DeliveryStatus    string `json:"deliveryStatus"`
	DeliveryMethod    string `json:"deliveryMethod"`
}

func formatOrder(o shopify.Order, now time.Time, loc *time.Location) OrderRow {
	orderID := o.Name
	if orderID == "" {
		orderID = o.ID
	}
	return OrderRow{
		OrderID:           orderID,
		WishlistShareID:   o.Attribute(shopify.ShareIDAttribute),
		DateCreated:       formatOrderDate(o.CreatedAt, now, loc),
		CustomerName:      customerName(o.Customer),
		Channel:           channelOnlineStore,
		Amount:            formatAmount(o),
		PaymentStatus:     strings.ToLower(o.DisplayFinancialStatus),
		FulfillmentStatus: strings.ToLower(o.DisplayFulfillmentStatus),
		Items:             formatItems(o.ItemCount()),
	}
}

// formatOrderDate renders "Today at 14:05", "Yesterday at 09:12" or
// "Monday at 18:40" in loc.
func formatOrderDate(created, now time.Time, loc *time.Location) string {
	if created.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	created = created.In(loc)
	now = now.In(loc)

	var label string
	switch {
	case sameDay(created, now):
		label = "Today"
	case sameDay(created, now.AddDate(0, 0, -1)):
		label = "Yesterday"
	default:
		label = created.Weekday().String()
	}
	return fmt.Sprintf("%s at %s", label, created.Format("15:04"))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func formatAmount(o shopify.Order) string {
	if o.TotalPriceSet == nil {
		return strings.TrimSpace("0.00 " + o.CurrencyCode)
	}
	money := o.TotalPriceSet.ShopMoney
	currency := money.CurrencyCode
	if currency == "" {
		currency = o.CurrencyCode
	}
	return strings.TrimSpace(money.Amount + " " + currency)
}

func formatItems(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

func customerName(c *shopify.Customer) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
