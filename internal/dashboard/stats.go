package dashboard

import "github.com/shopspring/decimal"

// Stats is the headline block of the dashboard. Field names match the
// storefront admin widgets that consume the JSON.
type Stats struct {
	TotalWishlistProfiles         int64   `json:"totalWishlistProfiles"`
	TotalWishlistUsers            int64   `json:"totalWishlistUsers"`
	TotalCustomers                int64   `json:"totalCustomers"`
	WishlistAdoptionRate          float64 `json:"wishlistAdoptionRate"`
	WishlistAdds                  int64   `json:"wishlistAdds"`
	WishlistAddsPerUser           float64 `json:"wishlistAddsPerUser"`
	WishlistReturningUsers        string  `json:"wishlistReturningUsers"`
	WishlistFeatureEngagementRate string  `json:"wishlistFeatureEngagementRate"`
	WishlistToCart                float64 `json:"wishlistToCart"`
	WishlistToPurchase            float64 `json:"wishlistToPurchase"`
}

var hundred = decimal.NewFromInt(100)

// BuildStats derives the rates from raw counts.
func BuildStats(c Counts, totalCustomers int64) Stats {
	return Stats{
		TotalWishlistProfiles: c.Profiles,
		TotalWishlistUsers:    c.Users,
		TotalCustomers:        totalCustomers,
		WishlistAdoptionRate:  ratio(decimal.NewFromInt(c.Users).Mul(hundred), totalCustomers),
		WishlistAdds:          c.Adds,
		WishlistAddsPerUser:   ratio(decimal.NewFromInt(c.Adds), c.Users),
		WishlistToCart:        ratio(decimal.NewFromInt(c.Carted).Mul(hundred), c.Adds),
		WishlistToPurchase:    ratio(decimal.NewFromInt(c.Gifted).Mul(hundred), c.Adds),
	}
}

// ratio divides and rounds to two places; a zero denominator yields 0.
func ratio(numerator decimal.Decimal, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator.Div(decimal.NewFromInt(denominator)).Round(2).InexactFloat64()
}
