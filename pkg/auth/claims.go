package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// DashboardTokenPayload captures the data available when minting a dashboard JWT.
type DashboardTokenPayload struct {
	Operator    string
	Storefronts []string
	JTI         string
}

// DashboardClaims is the typed JWT handed to dashboard operators. An empty
// storefront list grants every storefront.
type DashboardClaims struct {
	Storefronts []string `json:"storefronts,omitempty"`
	jwt.RegisteredClaims
}

// Allows reports whether the token grants access to storefront.
func (c *DashboardClaims) Allows(storefront string) bool {
	if c == nil {
		return false
	}
	if len(c.Storefronts) == 0 {
		return true
	}
	return slices.Contains(c.Storefronts, storefront)
}
