package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ashcorp/wishlist-backend/internal/storefront"
	"github.com/ashcorp/wishlist-backend/pkg/auth"
	"github.com/ashcorp/wishlist-backend/pkg/config"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
)

// dashboard-token mints a signed token for the wishlist dashboard.
//
//	go run ./cmd/dashboard-token -operator ops@ash-luxe.com -storefronts ashluxury
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "dashboard-token", Format: "console", Output: os.Stderr})

	_ = godotenv.Load()

	operator := flag.String("operator", "", "operator email or name recorded as the token subject")
	storefronts := flag.String("storefronts", "", "comma separated storefronts the token grants; empty grants all")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to "+config.EnvDashboardTokenTTL)
	flag.Parse()

	cfg, err := config.LoadDashboard()
	if err != nil {
		logg.Error(ctx, "failed to load dashboard config", err)
		os.Exit(1)
	}
	if *ttl > 0 {
		cfg.TokenTTL = *ttl
	}

	keys, err := parseStorefronts(*storefronts)
	if err != nil {
		logg.Error(ctx, "invalid storefronts", err)
		os.Exit(1)
	}

	token, err := auth.MintDashboardToken(cfg, time.Now().UTC(), auth.DashboardTokenPayload{
		Operator:    *operator,
		Storefronts: keys,
	})
	if err != nil {
		logg.Error(ctx, "failed to mint dashboard token", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"operator":    *operator,
		"storefronts": keys,
		"expires_in":  cfg.TokenTTL.String(),
	}), "dashboard token minted")
	fmt.Println(token)
}

func parseStorefronts(raw string) ([]string, error) {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sf, ok := storefront.Lookup(part)
		if !ok {
			return nil, fmt.Errorf("unknown storefront %q", part)
		}
		keys = append(keys, sf.String())
	}
	return keys, nil
}
