package storefront

import (
	"context"
	"strings"

	"github.com/ashcorp/wishlist-backend/pkg/config"
)

const (
	SecretStoreURL      = "SHOPIFY_STORE_URL"
	SecretAccessToken   = "SHOPIFY_ADMIN_ACCESS_TOKEN"
	SecretWebhookSecret = "SHOPIFY_WEBHOOK_SECRET"
)

// Credentials are the Shopify settings used for one storefront.
type Credentials struct {
	StoreURL      string
	AccessToken   string
	WebhookSecret string
}

// SecretSource is satisfied by the process-wide secrets loader.
type SecretSource interface {
	Get(ctx context.Context, key string) string
}

// CredentialResolver prefers values from the secret set and falls back to env config.
type CredentialResolver struct {
	secrets SecretSource
	cfg     config.ShopifyConfig
}

func NewCredentialResolver(secrets SecretSource, cfg config.ShopifyConfig) *CredentialResolver {
	return &CredentialResolver{secrets: secrets, cfg: cfg}
}

func (r *CredentialResolver) Resolve(ctx context.Context, sf Storefront) Credentials {
	fallback := r.fallback(sf)
	return Credentials{
		StoreURL:      r.lookup(ctx, sf.SecretKey(SecretStoreURL), fallback.StoreURL),
		AccessToken:   r.lookup(ctx, sf.SecretKey(SecretAccessToken), fallback.AccessToken),
		WebhookSecret: r.lookup(ctx, sf.SecretKey(SecretWebhookSecret), fallback.WebhookSecret),
	}
}

func (r *CredentialResolver) lookup(ctx context.Context, key, fallback string) string {
	if r.secrets != nil {
		if v := strings.TrimSpace(r.secrets.Get(ctx, key)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(fallback)
}

func (r *CredentialResolver) fallback(sf Storefront) Credentials {
	if sf.Key == Ashluxury {
		return Credentials{
			StoreURL:      r.cfg.AshluxuryStoreURL,
			AccessToken:   r.cfg.AshluxuryAccessToken,
			WebhookSecret: r.cfg.AshluxuryWebhookSecret,
		}
	}
	return Credentials{
		StoreURL:      r.cfg.StoreURL,
		AccessToken:   r.cfg.AdminAccessToken,
		WebhookSecret: r.cfg.WebhookSecret,
	}
}
