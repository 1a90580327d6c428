package wishlist

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	SharePrefix   = "share_"
	shareIDLength = 19
	shareAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewShareID mints "share_" followed by 19 random base-36 characters.
func NewShareID() (string, error) {
	var b strings.Builder
	b.Grow(len(SharePrefix) + shareIDLength)
	b.WriteString(SharePrefix)

	base := big.NewInt(int64(len(shareAlphabet)))
	for i := 0; i < shareIDLength; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("generate share id: %w", err)
		}
		b.WriteByte(shareAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeShareID accepts share ids with or without the "share_" prefix.
// Storefront scripts send the bare token in order attributes.
func NormalizeShareID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, SharePrefix) {
		return trimmed
	}
	return SharePrefix + trimmed
}
