package shopify

import "time"

// Order is the subset of the Admin API order the dashboard renders.
type Order struct {
	ID                       string             `json:"id"`
	Name                     string             `json:"name"`
	CreatedAt                time.Time          `json:"createdAt"`
	CurrencyCode             string             `json:"currencyCode"`
	DisplayFinancialStatus   string             `json:"displayFinancialStatus"`
	DisplayFulfillmentStatus string             `json:"displayFulfillmentStatus"`
	CustomAttributes         []Attribute        `json:"customAttributes"`
	TotalPriceSet            *MoneyBag          `json:"totalPriceSet"`
	Customer                 *Customer          `json:"customer"`
	LineItems                LineItemConnection `json:"lineItems"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type MoneyBag struct {
	ShopMoney Money `json:"shopMoney"`
}

type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LineItemConnection struct {
	Edges []LineItemEdge `json:"edges"`
}

type LineItemEdge struct {
	Node LineItem `json:"node"`
}

type LineItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// Attribute returns the value of the custom attribute key, or "".
func (o Order) Attribute(key string) string {
	for _, attr := range o.CustomAttributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}

// ItemCount sums line item quantities.
func (o Order) ItemCount() int {
	total := 0
	for _, edge := range o.LineItems.Edges {
		total += edge.Node.Quantity
	}
	return total
}
