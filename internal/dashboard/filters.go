package dashboard

import "strings"

// Filters narrow the orders table. Empty fields match everything.
type Filters struct {
	Search            string
	PaymentStatus     string
	FulfillmentStatus string
}

// Apply returns the rows matching every non-empty filter.
func (f Filters) Apply(rows []OrderRow) []OrderRow {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	payment := strings.TrimSpace(f.PaymentStatus)
	fulfillment := strings.TrimSpace(f.FulfillmentStatus)

	out := make([]OrderRow, 0, len(rows))
	for _, row := range rows {
		if term != "" &&
			!strings.Contains(strings.ToLower(row.CustomerName), term) &&
			!strings.Contains(strings.ToLower(row.WishlistShareID), term) &&
			!strings.Contains(strings.ToLower(row.OrderID), term) {
			continue
		}
		if payment != "" && !strings.EqualFold(row.PaymentStatus, payment) {
			continue
		}
		if fulfillment != "" && !strings.EqualFold(row.FulfillmentStatus, fulfillment) {
			continue
		}
		out = append(out, row)
	}
	return out
}
