package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashcorp/wishlist-backend/internal/storefront"
	pkgerrors "github.com/ashcorp/wishlist-backend/pkg/errors"
	"github.com/ashcorp/wishlist-backend/pkg/logger"
	"github.com/ashcorp/wishlist-backend/pkg/shopify"
)

var (
	paymentStatuses     = []string{"paid", "pending", "authorized", "partially_paid", "partially_refunded", "refunded", "voided", "expired"}
	fulfillmentStatuses = []string{"unfulfilled", "fulfilled", "partially_fulfilled", "in_progress", "on_hold", "scheduled", "restocked"}
)

type credentialResolver interface {
	Resolve(ctx context.Context, sf storefront.Storefront) storefront.Credentials
}

// OrderFetcher loads orders from the Shopify Admin API.
type OrderFetcher interface {
	FetchOrders(ctx context.Context, orderIDs []string) ([]shopify.Order, error)
}

// FetcherFactory builds an OrderFetcher for one storefront's credentials.
type FetcherFactory func(creds storefront.Credentials) (OrderFetcher, error)

// Page is everything the dashboard template renders.
type Page struct {
	Storefront   storefront.Storefront
	Stats        *Stats
	Orders       []OrderRow
	Filters      Filters
	CurrentRoute string
	GeneratedAt  time.Time
}

type Service interface {
	Stats(ctx context.Context, sf storefront.Storefront) (*Stats, error)
	Orders(ctx context.Context, sf storefront.Storefront) ([]OrderRow, error)
	Page(ctx context.Context, sf storefront.Storefront, filters Filters) (*Page, error)
}

type ServiceParams struct {
	Repo           Repository
	Credentials    credentialResolver
	Fetchers       FetcherFactory
	TotalCustomers int64
	Location       *time.Location
	Logger         *logger.Logger
	Clock          func() time.Time
}

type service struct {
	repo           Repository
	credentials    credentialResolver
	fetchers       FetcherFactory
	totalCustomers int64
	loc            *time.Location
	logg           *logger.Logger
	now            func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if params.Credentials == nil {
		return nil, fmt.Errorf("credential resolver required")
	}
	if params.Fetchers == nil {
		return nil, fmt.Errorf("order fetcher factory required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:           params.Repo,
		credentials:    params.Credentials,
		fetchers:       params.Fetchers,
		totalCustomers: params.TotalCustomers,
		loc:            loc,
		logg:           params.Logger,
		now:            clock,
	}, nil
}

// ShopifyFetchers returns a FetcherFactory backed by the GraphQL client.
func ShopifyFetchers(apiVersion string, timeout time.Duration) FetcherFactory {
	return func(creds storefront.Credentials) (OrderFetcher, error) {
		client, err := shopify.NewClient(creds.StoreURL, creds.AccessToken, apiVersion, shopify.WithTimeout(timeout))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func (s *service) Stats(ctx context.Context, sf storefront.Storefront) (*Stats, error) {
	counts, err := s.repo.Counts(ctx, sf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load dashboard counts")
	}
	stats := BuildStats(counts, s.totalCustomers)
	return &stats, nil
}

// Orders lists recorded wishlist orders as table rows. Shopify failures
// degrade to an empty list.
func (s *service) Orders(ctx context.Context, sf storefront.Storefront) ([]OrderRow, error) {
	ids, err := s.repo.ListOrderIDs(ctx, sf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist orders")
	}
	if len(ids) == 0 {
		return []OrderRow{}, nil
	}

	creds := s.credentials.Resolve(ctx, sf)
	if creds.StoreURL == "" || creds.AccessToken == "" {
		s.warn(ctx, sf, "dashboard.shopify_credentials_missing", nil)
		return []OrderRow{}, nil
	}
	fetcher, err := s.fetchers(creds)
	if err != nil {
		s.warn(ctx, sf, "dashboard.shopify_client_failed", err)
		return []OrderRow{}, nil
	}
	orders, err := fetcher.FetchOrders(ctx, ids)
	if err != nil {
		s.warn(ctx, sf, "dashboard.shopify_orders_failed", err)
		return []OrderRow{}, nil
	}

	now := s.now()
	rows := make([]OrderRow, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, formatOrder(order, now, s.loc))
	}
	return rows, nil
}

// Page assembles stats and orders concurrently. Either half failing leaves
// that half empty rather than failing the page.
func (s *service) Page(ctx context.Context, sf storefront.Storefront, filters Filters) (*Page, error) {
	page := &Page{
		Storefront:   sf,
		Filters:      filters,
		CurrentRoute: PagePath(sf),
		GeneratedAt:  s.now(),
	}

	var (
		stats  *Stats
		orders []OrderRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.Stats(gctx, sf)
		if err != nil {
			s.warn(gctx, sf, "dashboard.stats_failed", err)
			return nil
		}
		stats = res
		return nil
	})
	g.Go(func() error {
		res, err := s.Orders(gctx, sf)
		if err != nil {
			s.warn(gctx, sf, "dashboard.orders_failed", err)
			return nil
		}
		orders = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if orders == nil {
		orders = []OrderRow{}
	}
	page.Stats = stats
	page.Orders = filters.Apply(orders)
	return page, nil
}

func (s *service) warn(ctx context.Context, sf storefront.Storefront, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithStorefront(ctx, sf.String())
	if err != nil {
		ctx = s.logg.WithField(ctx, "error", err.Error())
	}
	s.logg.Warn(ctx, msg)
}

// PagePath is the dashboard route for a storefront.
func PagePath(sf storefront.Storefront) string {
	if sf.Key == storefront.Default().Key {
		return "/"
	}
	return "/" + sf.String()
}

func (p *Page) view() pageView {
	links := make([]storefrontLink, 0, len(storefront.All()))
	for _, sf := range storefront.All() {
		links = append(links, storefrontLink{
			Label:  storefrontLabel(sf),
			Path:   PagePath(sf),
			Active: sf.Key == p.Storefront.Key,
		})
	}
	return pageView{
		Page:                p,
		Title:               storefrontLabel(p.Storefront),
		Storefronts:         links,
		PaymentStatuses:     paymentStatuses,
		FulfillmentStatuses: fulfillmentStatuses,
	}
}

func storefrontLabel(sf storefront.Storefront) string {
	key := sf.String()
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
