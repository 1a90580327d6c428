package webhooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashcorp/wishlist-backend/pkg/redis"
)

// IdempotencyGuard drops Shopify redeliveries keyed by X-Shopify-Webhook-Id.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark claims the webhook id and reports whether it was already seen.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, webhookID string) (bool, error) {
	if webhookID == "" {
		return false, errors.New("webhook id is required")
	}
	key := g.store.IdempotencyKey(g.scope, webhookID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete releases the claim so a failed delivery can be retried.
func (g *IdempotencyGuard) Delete(ctx context.Context, webhookID string) error {
	if webhookID == "" {
		return errors.New("webhook id is required")
	}
	return g.store.Del(ctx, g.store.IdempotencyKey(g.scope, webhookID))
}
