package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/ashcorp/wishlist-backend/pkg/config"
)

func testDashboardConfig() config.DashboardConfig {
	return config.DashboardConfig{
		JWTSecret: "secret",
		JWTIssuer: "wishlist-dashboard",
		TokenTTL:  30 * time.Minute,
	}
}

func TestMintAndParseDashboardToken(t *testing.T) {
	cfg := testDashboardConfig()
	now := time.Now().UTC()

	token, err := MintDashboardToken(cfg, now, DashboardTokenPayload{
		Operator:    "ops@ash-luxe.com",
		Storefronts: []string{"ashluxury"},
	})
	if err != nil {
		t.Fatalf("mint dashboard token: %v", err)
	}

	claims, err := ParseDashboardToken(cfg, token)
	if err != nil {
		t.Fatalf("parse dashboard token: %v", err)
	}

	if claims.Subject != "ops@ash-luxe.com" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Issuer != cfg.JWTIssuer {
		t.Fatalf("expected issuer %s, got %s", cfg.JWTIssuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
	if !claims.Allows("ashluxury") || claims.Allows("ashluxe") {
		t.Fatalf("unexpected storefront grants %v", claims.Storefronts)
	}

	exp := now.Add(cfg.TokenTTL)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestDashboardClaimsAllowAllWhenUnscoped(t *testing.T) {
	claims := &DashboardClaims{}
	if !claims.Allows("ashluxe") || !claims.Allows("ashluxury") {
		t.Fatal("unscoped token should allow every storefront")
	}
	var nilClaims *DashboardClaims
	if nilClaims.Allows("ashluxe") {
		t.Fatal("nil claims must not allow access")
	}
}

func TestParseDashboardTokenInvalidSignature(t *testing.T) {
	cfg := testDashboardConfig()
	token, err := MintDashboardToken(cfg, time.Now(), DashboardTokenPayload{Operator: "ops"})
	if err != nil {
		t.Fatalf("mint dashboard token: %v", err)
	}

	if _, err := ParseDashboardToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}

	other := cfg
	other.JWTIssuer = "someone-else"
	if _, err := ParseDashboardToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestParseDashboardTokenExpired(t *testing.T) {
	cfg := testDashboardConfig()
	token, err := MintDashboardToken(cfg, time.Now().Add(-time.Hour), DashboardTokenPayload{Operator: "ops"})
	if err != nil {
		t.Fatalf("mint dashboard token: %v", err)
	}

	_, err = ParseDashboardToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintDashboardTokenValidation(t *testing.T) {
	cfg := testDashboardConfig()
	if _, err := MintDashboardToken(cfg, time.Now(), DashboardTokenPayload{Operator: " "}); err == nil {
		t.Fatal("expected missing operator error")
	}
	noSecret := cfg
	noSecret.JWTSecret = ""
	if _, err := MintDashboardToken(noSecret, time.Now(), DashboardTokenPayload{Operator: "ops"}); err == nil {
		t.Fatal("expected missing secret error")
	}
	noTTL := cfg
	noTTL.TokenTTL = 0
	if _, err := MintDashboardToken(noTTL, time.Now(), DashboardTokenPayload{Operator: "ops"}); err == nil {
		t.Fatal("expected ttl error")
	}
}
